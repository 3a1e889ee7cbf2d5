package vm

import (
	"strconv"
	"strings"
)

// Format renders o in reader syntax. Atoms print so that reading the
// result yields an equal value. A pair or vector reached again while it is
// still being printed is written as "...".
func (rt *Runtime) Format(o Object) string {
	p := printer{rt: rt}
	p.format(o)
	return p.sb.String()
}

type printer struct {
	rt   *Runtime
	sb   strings.Builder
	open map[Object]bool
}

func (p *printer) enter(o Object) bool {
	if p.open == nil {
		p.open = make(map[Object]bool)
	}
	if p.open[o] {
		return false
	}
	p.open[o] = true
	return true
}

func (p *printer) format(o Object) {
	rt, sb := p.rt, &p.sb
	switch rt.Type(o) {
	case TypeInteger:
		sb.WriteString(strconv.FormatInt(o.Int(), 10))
	case TypeCharacter:
		sb.WriteString(`#\`)
		sb.WriteString(CharacterLiteral(o.Rune()))
	case TypeFalse:
		sb.WriteString("#f")
	case TypeTrue:
		sb.WriteString("#t")
	case TypeEmptyList:
		sb.WriteString("()")
	case TypeUndefined:
		sb.WriteString("#<undefined>")
	case TypeSymbol:
		sb.WriteString(rt.SymbolName(o))
	case TypeString:
		writeString(sb, rt.StringData(o))
	case TypeVector:
		if !p.enter(o) {
			sb.WriteString("...")
			return
		}
		sb.WriteString("#(")
		for i, elt := range rt.vector(o, "Format").elements {
			if i > 0 {
				sb.WriteByte(' ')
			}
			p.format(elt)
		}
		sb.WriteByte(')')
		delete(p.open, o)
	case TypePair:
		if !p.enter(o) {
			sb.WriteString("...")
			return
		}
		chain := []Object{o}
		sb.WriteByte('(')
		p.format(rt.Car(o))
		for o = rt.Cdr(o); rt.Is(o, TypePair); o = rt.Cdr(o) {
			if !p.enter(o) {
				break
			}
			chain = append(chain, o)
			sb.WriteByte(' ')
			p.format(rt.Car(o))
		}
		if o != EmptyList {
			sb.WriteString(" . ")
			if rt.Is(o, TypePair) {
				sb.WriteString("...")
			} else {
				p.format(o)
			}
		}
		sb.WriteByte(')')
		for _, c := range chain {
			delete(p.open, c)
		}
	case TypeError:
		sb.WriteString("#<error ")
		p.format(rt.Signal(o))
		sb.WriteByte(' ')
		p.format(rt.Payload(o))
		sb.WriteByte('>')
	}
}

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
