package reader

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	"github.com/chazu/brim/vm"
)

// ---------------------------------------------------------------------------
// Parser: datum reader driving the primitive machine
// ---------------------------------------------------------------------------

// Diagnostic messages. The spelling of MsgUnmatchedParen is part of the
// stable output format.
const (
	MsgUnmatchedParen   = "unmatched paranthesis"
	MsgUnknownEscape    = "unknown escape sequence"
	MsgUnmatchedQuote   = "unmatched quote"
	MsgQuoteArgument    = "quotation must have an argument"
	MsgUnknownToken     = "unknown token"
	MsgIntegerRange     = "integer out of range"
	MsgUnknownCharacter = "unknown character"
)

// ParseSignal is the name of the symbol every parse error is signalled with.
const ParseSignal = "parse"

// ParseError describes a failed read. Pos is the byte offset of the token
// that triggered it.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("At %d: %s", e.Pos, e.Message)
}

var quoteSymbols = map[TokenType]string{
	TokenQuote:           "quote",
	TokenQuasiquote:      "quasiquote",
	TokenUnquote:         "unquote",
	TokenUnquoteSplicing: "unquote-splicing",
}

type constructKind int

const (
	constructList   constructKind = iota // ( ... waiting for data, '.', or ')'
	constructDotted                      // ( ... . waiting for the tail
	constructTail                        // ( ... . tail waiting for ')'
	constructVector                      // #( ... waiting for data or ')'
	constructQuote                       // 'x waiting for x
)

// construct is a partially read compound datum. Its elements already sit on
// the current frame.
type construct struct {
	kind  constructKind
	count int
}

// Parser reads data from a token stream onto the runtime's current frame.
type Parser struct {
	rt    *vm.Runtime
	lex   *Lexer
	stack []construct
	log   commonlog.Logger
}

// NewParser creates a parser that builds data in rt from r.
func NewParser(rt *vm.Runtime, r io.Reader) *Parser {
	return &Parser{
		rt:  rt,
		lex: NewLexer(r),
		log: commonlog.GetLogger("brim.reader"),
	}
}

// Read reads one datum and leaves it on top of the current frame.
//
// On success exactly one value has been pushed. At end of input before any
// token it returns io.EOF and pushes nothing. On a parse error it pushes
// nothing, sets the runtime's pending error, and returns a *ParseError.
// If an error is already pending Read does nothing and returns it.
func (p *Parser) Read() (vm.Object, error) {
	if p.rt.HasError() {
		return vm.Undefined, p.rt.Fault()
	}
	frame := p.rt.Frame()
	base := frame.Len()
	p.stack = p.stack[:0]

	obj, err := p.read()
	if err != nil {
		frame.Truncate(base)
		if perr, ok := err.(*ParseError); ok {
			p.rt.Raisef(ParseSignal, "%s", perr.Error())
			p.log.Debugf("%s", perr.Error())
		}
		return vm.Undefined, err
	}
	if lexErr := p.lex.Err(); lexErr != nil {
		frame.Truncate(base)
		return vm.Undefined, fmt.Errorf("reader: %w", lexErr)
	}
	return obj, nil
}

// Offset returns the byte offset just past the last token consumed.
func (p *Parser) Offset() int {
	return p.lex.Pos()
}

func (p *Parser) read() (vm.Object, error) {
	for {
		tok := p.lex.NextToken()
		if err := p.lex.Err(); err != nil {
			return vm.Undefined, fmt.Errorf("reader: %w", err)
		}

		produced, err := p.closeOrAdvance(tok)
		if err != nil {
			return vm.Undefined, err
		}
		if !produced {
			produced, err = p.datum(tok)
			if err != nil {
				return vm.Undefined, err
			}
		}
		if !produced {
			continue
		}

		// A complete datum is on top of the frame; hand it to the
		// enclosing constructs.
		for produced {
			n := len(p.stack)
			if n == 0 {
				return p.rt.Peek(0), nil
			}
			top := &p.stack[n-1]
			switch top.kind {
			case constructList, constructVector:
				top.count++
				produced = false
			case constructDotted:
				top.kind = constructTail
				produced = false
			case constructQuote:
				p.rt.BuildList(2, true)
				p.stack = p.stack[:n-1]
			}
		}
	}
}

// closeOrAdvance handles tokens that only make sense inside an open
// construct: ')' closing it and '.' starting a dotted tail. It reports
// whether a complete datum was produced.
func (p *Parser) closeOrAdvance(tok Token) (bool, error) {
	n := len(p.stack)
	if n == 0 {
		return false, nil
	}
	top := &p.stack[n-1]

	switch top.kind {
	case constructList:
		switch tok.Type {
		case TokenRParen:
			p.rt.BuildList(top.count, true)
			p.stack = p.stack[:n-1]
			return true, nil
		case TokenDot:
			if top.count == 0 {
				return false, p.fail(tok, MsgUnknownToken)
			}
			top.kind = constructDotted
			return false, nil
		}
	case constructTail:
		if tok.Type == TokenRParen {
			p.rt.BuildList(top.count, false)
			p.stack = p.stack[:n-1]
			return true, nil
		}
		return false, p.fail(tok, MsgUnmatchedParen)
	case constructVector:
		if tok.Type == TokenRParen {
			p.rt.BuildVector(top.count)
			p.stack = p.stack[:n-1]
			return true, nil
		}
	}
	return false, nil
}

// datum handles a token in a position where a datum is expected. It either
// pushes a complete atom, opens a construct, or fails.
func (p *Parser) datum(tok Token) (bool, error) {
	switch tok.Type {
	case TokenEOF:
		return false, p.eof(tok)

	case TokenLParen:
		p.stack = append(p.stack, construct{kind: constructList})
		return false, nil

	case TokenHashLParen:
		p.stack = append(p.stack, construct{kind: constructVector})
		return false, nil

	case TokenQuote, TokenQuasiquote, TokenUnquote, TokenUnquoteSplicing:
		p.rt.Intern(quoteSymbols[tok.Type])
		p.stack = append(p.stack, construct{kind: constructQuote})
		return false, nil

	case TokenTrue:
		p.rt.Push(vm.True)
		return true, nil

	case TokenFalse:
		p.rt.Push(vm.False)
		return true, nil

	case TokenString:
		data, msg := unescape(tok.Literal)
		if msg != "" {
			return false, p.fail(tok, msg)
		}
		p.rt.PushString(data)
		return true, nil

	case TokenAtom:
		return p.atom(tok)
	}
	return false, p.fail(tok, MsgUnknownToken)
}

func (p *Parser) atom(tok Token) (bool, error) {
	lit := tok.Literal

	if IsInteger(lit) {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return false, p.fail(tok, MsgIntegerRange)
		}
		o, ok := vm.TryInteger(n)
		if !ok {
			return false, p.fail(tok, MsgIntegerRange)
		}
		p.rt.Push(o)
		return true, nil
	}

	if strings.HasPrefix(lit, `#\`) {
		c, ok := characterValue(lit[2:])
		if !ok {
			return false, p.fail(tok, MsgUnknownCharacter)
		}
		p.rt.Push(vm.Character(c))
		return true, nil
	}

	if IsSymbol(lit) {
		p.rt.Intern(lit)
		return true, nil
	}
	return false, p.fail(tok, MsgUnknownToken)
}

// eof reports end of input in the context of the innermost open construct.
func (p *Parser) eof(tok Token) error {
	n := len(p.stack)
	if n == 0 {
		return io.EOF
	}
	if p.stack[n-1].kind == constructQuote {
		return p.fail(tok, MsgQuoteArgument)
	}
	return p.fail(tok, MsgUnmatchedParen)
}

func (p *Parser) fail(tok Token, msg string) error {
	return &ParseError{Pos: tok.Pos, Message: msg}
}

// ---------------------------------------------------------------------------
// Literal helpers
// ---------------------------------------------------------------------------

// unescape decodes a string token including its quotes. It returns a
// non-empty diagnostic message if the token is malformed.
func unescape(lit string) (string, string) {
	var sb strings.Builder
	for i := 1; i < len(lit); i++ {
		c := lit[i]
		switch c {
		case '\\':
			if i+1 >= len(lit) {
				return "", MsgUnmatchedQuote
			}
			i++
			switch lit[i] {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return "", MsgUnknownEscape
			}
		case '"':
			if i == len(lit)-1 {
				return sb.String(), ""
			}
			return "", MsgUnmatchedQuote
		default:
			sb.WriteByte(c)
		}
	}
	return "", MsgUnmatchedQuote
}

func characterValue(spec string) (rune, bool) {
	if c, ok := vm.CharacterNames[spec]; ok {
		return c, true
	}
	r, size := utf8.DecodeRuneInString(spec)
	if (r == utf8.RuneError && size <= 1) || size != len(spec) {
		return 0, false
	}
	return r, true
}

// IsInteger reports whether lit is an optionally signed run of decimal
// digits.
func IsInteger(lit string) bool {
	if lit == "" {
		return false
	}
	digits := lit
	if lit[0] == '+' || lit[0] == '-' {
		digits = lit[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// IsSymbol reports whether lit is a legal symbol. "+", "-" and "..." are
// always symbols; otherwise the first character is a letter or one of
// !$%&*/:<=>?~_^ and later characters may also be digits or .+-
func IsSymbol(lit string) bool {
	switch lit {
	case "+", "-", "...":
		return true
	case "":
		return false
	}
	for i, r := range lit {
		if isInitial(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '.' || r == '+' || r == '-') {
			continue
		}
		return false
	}
	return true
}

func isInitial(r rune) bool {
	if unicode.IsLetter(r) {
		return true
	}
	return strings.ContainsRune("!$%&*/:<=>?~_^", r)
}
