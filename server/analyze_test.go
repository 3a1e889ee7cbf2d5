package server

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/brim/reader"
	"github.com/chazu/brim/vm"
)

func TestAnalyzeForms(t *testing.T) {
	rt := vm.New(vm.Options{})
	text := "(define x 1)\n  ; note\n  'y \"s\""

	a := Analyze(rt, text)
	if a.Err != nil {
		t.Fatalf("unexpected error: %v", a.Err)
	}
	want := []Form{
		{Start: 0, End: 12, Text: "(define x 1)"},
		{Start: 24, End: 26, Text: "(quote y)"},
		{Start: 27, End: 30, Text: `"s"`},
	}
	if len(a.Forms) != len(want) {
		t.Fatalf("forms = %v, want %v", a.Forms, want)
	}
	for i := range want {
		if a.Forms[i] != want[i] {
			t.Errorf("form[%d] = %+v, want %+v", i, a.Forms[i], want[i])
		}
	}

	if rt.Depth() != 1 || rt.Frame().Len() != 0 {
		t.Error("Analyze left values on the runtime")
	}
}

func TestAnalyzeError(t *testing.T) {
	rt := vm.New(vm.Options{})
	text := "(a b)\n(c \"d\\q\")"

	a := Analyze(rt, text)
	if a.Err == nil {
		t.Fatal("expected a parse error")
	}
	if a.Err.Message != reader.MsgUnknownEscape || a.Err.Pos != 9 {
		t.Errorf("error = %v, want At 9: %s", a.Err, reader.MsgUnknownEscape)
	}
	if len(a.Forms) != 1 {
		t.Errorf("forms before the error = %d, want 1", len(a.Forms))
	}
	if rt.HasError() {
		t.Error("Analyze left the parse error pending")
	}

	diags := a.Diagnostics(text, "brim-lsp")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", diags)
	}
	d := diags[0]
	wantStart := protocol.Position{Line: 1, Character: 3}
	wantEnd := protocol.Position{Line: 1, Character: 4}
	if d.Range.Start != wantStart || d.Range.End != wantEnd {
		t.Errorf("range = %v, want %v-%v", d.Range, wantStart, wantEnd)
	}
	if d.Message != reader.MsgUnknownEscape {
		t.Errorf("message = %q", d.Message)
	}
	if d.Source == nil || *d.Source != "brim-lsp" {
		t.Error("diagnostic source not set")
	}
}

func TestAnalyzeUnmatchedAtEOF(t *testing.T) {
	rt := vm.New(vm.Options{})
	text := "(a\n (b"

	diags := Analyze(rt, text).Diagnostics(text, "x")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", diags)
	}
	if diags[0].Message != reader.MsgUnmatchedParen {
		t.Errorf("message = %q, want %q", diags[0].Message, reader.MsgUnmatchedParen)
	}
	want := protocol.Position{Line: 1, Character: 3}
	if diags[0].Range.Start != want {
		t.Errorf("start = %v, want %v", diags[0].Range.Start, want)
	}
}

func TestAnalyzeClean(t *testing.T) {
	rt := vm.New(vm.Options{})
	diags := Analyze(rt, "a b c").Diagnostics("a b c", "x")
	if diags == nil || len(diags) != 0 {
		t.Errorf("diagnostics = %v, want empty non-nil slice", diags)
	}
}

func TestFormAt(t *testing.T) {
	a := Analysis{Forms: []Form{
		{Start: 0, End: 5, Text: "one"},
		{Start: 8, End: 12, Text: "two"},
	}}
	tests := []struct {
		offset int
		want   string
		ok     bool
	}{
		{0, "one", true},
		{4, "one", true},
		{5, "", false},
		{7, "", false},
		{8, "two", true},
		{11, "two", true},
		{12, "", false},
	}
	for _, tt := range tests {
		form, ok := a.FormAt(tt.offset)
		if ok != tt.ok || form.Text != tt.want {
			t.Errorf("FormAt(%d) = %q, %v; want %q, %v", tt.offset, form.Text, ok, tt.want, tt.ok)
		}
	}
}

func TestSymbolsWithPrefix(t *testing.T) {
	rt := vm.New(vm.Options{})
	for _, name := range []string{"define", "defmacro", "delete", "car", "def"} {
		rt.Symbol(name)
	}

	got := SymbolsWithPrefix(rt, "def", 10)
	want := []string{"define", "defmacro"}
	if len(got) != len(want) {
		t.Fatalf("SymbolsWithPrefix = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SymbolsWithPrefix[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SymbolsWithPrefix(rt, "d", 1); len(got) != 1 {
		t.Errorf("limit not applied: %v", got)
	}
}

func TestOccurrences(t *testing.T) {
	text := `(foo bar "foo" (foo . foobar))`
	got := Occurrences(text, "foo")
	want := [][2]int{{1, 4}, {16, 19}}
	if len(got) != len(want) {
		t.Fatalf("Occurrences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Occurrences[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
