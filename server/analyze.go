package server

import (
	"errors"
	"io"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/brim/reader"
	"github.com/chazu/brim/vm"
)

// Form is one top-level datum of a document. Start and End are byte
// offsets; Text is the datum as the printer renders it.
type Form struct {
	Start, End int
	Text       string
}

// Analysis is the result of reading a whole document.
type Analysis struct {
	Forms []Form
	Err   *reader.ParseError
}

// Analyze reads every datum in text inside a scratch frame and records
// where each one lies. Reading stops at the first parse error, which is
// taken out of the runtime's pending slot. Must run on the worker
// goroutine.
func Analyze(rt *vm.Runtime, text string) Analysis {
	var a Analysis
	rt.TakeError()
	rt.PushFrame()
	defer rt.PopFrame()

	p := reader.NewParser(rt, strings.NewReader(text))
	prev := 0
	for {
		obj, err := p.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *reader.ParseError
			if errors.As(err, &perr) {
				a.Err = perr
			}
			rt.TakeError()
			break
		}
		end := p.Offset()
		a.Forms = append(a.Forms, Form{
			Start: reader.SkipBlank(text, prev),
			End:   end,
			Text:  rt.Format(obj),
		})
		prev = end
	}
	return a
}

// FormAt returns the top-level form containing offset, if any.
func (a Analysis) FormAt(offset int) (Form, bool) {
	i := sort.Search(len(a.Forms), func(i int) bool { return a.Forms[i].End > offset })
	if i < len(a.Forms) && a.Forms[i].Start <= offset {
		return a.Forms[i], true
	}
	return Form{}, false
}

// Diagnostics converts the analysis to LSP diagnostics for text.
func (a Analysis) Diagnostics(text, source string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if a.Err == nil {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityError
	diagnostics = append(diagnostics, protocol.Diagnostic{
		Range:    rangeOf(text, a.Err.Pos, tokenEnd(text, a.Err.Pos)),
		Severity: &severity,
		Source:   &source,
		Message:  a.Err.Message,
	})
	return diagnostics
}

// tokenEnd returns the end of the token starting at pos: a single
// delimiter, or a run of non-delimiters.
func tokenEnd(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	if reader.IsDelimiter(text[pos]) {
		return pos + 1
	}
	end := pos + 1
	for end < len(text) && !reader.IsDelimiter(text[end]) {
		end++
	}
	return end
}

// SymbolsWithPrefix returns the interned symbol names starting with prefix,
// sorted, at most limit of them.
func SymbolsWithPrefix(rt *vm.Runtime, prefix string, limit int) []string {
	var names []string
	for _, name := range rt.Symbols().All() {
		if strings.HasPrefix(name, prefix) && name != prefix {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

// Occurrences returns the byte ranges of every atom token in text spelled
// exactly word.
func Occurrences(text, word string) [][2]int {
	var out [][2]int
	lex := reader.NewStringLexer(text)
	for {
		tok := lex.NextToken()
		if tok.IsEOF() {
			return out
		}
		if tok.Type == reader.TokenAtom && tok.Literal == word {
			out = append(out, [2]int{tok.Pos, tok.Pos + len(tok.Literal)})
		}
	}
}
