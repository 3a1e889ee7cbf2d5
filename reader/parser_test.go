package reader

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/chazu/brim/vm"
)

// parseAll reads every datum from code with one parser, the way a REPL
// would, and fails the test on any error.
func parseAll(t *testing.T, rt *vm.Runtime, code string) []vm.Object {
	t.Helper()
	p := NewParser(rt, strings.NewReader(code))
	var out []vm.Object
	for {
		obj, err := p.ReadDatum()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("parse %q: %v", code, err)
		}
		out = append(out, obj)
	}
}

func parseOne(t *testing.T, rt *vm.Runtime, code string) vm.Object {
	t.Helper()
	objs := parseAll(t, rt, code)
	if len(objs) != 1 {
		t.Fatalf("parse %q: got %d data, want 1", code, len(objs))
	}
	return objs[0]
}

func assertSymbol(t *testing.T, rt *vm.Runtime, o vm.Object, name string) {
	t.Helper()
	if rt.Type(o) != vm.TypeSymbol {
		t.Fatalf("got %v %s, want symbol %s", rt.Type(o), rt.Format(o), name)
	}
	if got := rt.SymbolName(o); got != name {
		t.Errorf("symbol = %q, want %q", got, name)
	}
}

func TestParseSymbols(t *testing.T) {
	rt := vm.New(vm.Options{})
	objs := parseAll(t, rt, "onesym twosym")

	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
	assertSymbol(t, rt, objs[0], "onesym")
	assertSymbol(t, rt, objs[1], "twosym")
}

func TestParseSymbolIdentity(t *testing.T) {
	rt := vm.New(vm.Options{})
	a1 := parseOne(t, rt, "a")
	a2 := parseOne(t, rt, "a")
	b := parseOne(t, rt, "b")

	if a1 != a2 {
		t.Error("parsing a twice should yield identical objects")
	}
	if a1 == b {
		t.Error("a and b must differ")
	}
}

func TestParseBooleans(t *testing.T) {
	rt := vm.New(vm.Options{})
	objs := parseAll(t, rt, "#t #f")

	if len(objs) != 2 || objs[0] != vm.True || objs[1] != vm.False {
		t.Errorf("got %v", objs)
	}
}

func TestParseStrings(t *testing.T) {
	rt := vm.New(vm.Options{})

	o := parseOne(t, rt, `"a string \n \t \\ \""`)
	if got := rt.StringData(o); got != "a string \n \t \\ \"" {
		t.Errorf("string = %q", got)
	}

	o = parseOne(t, rt, `"a\n\t\\\""`)
	if got := rt.StringData(o); got != "a\n\t\\\"" {
		t.Errorf("string = %q", got)
	}

	o = parseOne(t, rt, `""`)
	if got := rt.StringData(o); got != "" {
		t.Errorf("string = %q, want empty", got)
	}
}

func TestParseEmptyList(t *testing.T) {
	rt := vm.New(vm.Options{})
	if o := parseOne(t, rt, "()"); o != vm.EmptyList {
		t.Errorf("got %s, want ()", rt.Format(o))
	}
}

func TestParseList(t *testing.T) {
	rt := vm.New(vm.Options{})
	o := parseOne(t, rt, "(a b c)")

	if !rt.ProperList(o, 3) {
		t.Fatalf("not a proper list of 3: %s", rt.Format(o))
	}
	assertSymbol(t, rt, rt.Nth(o, 0), "a")
	assertSymbol(t, rt, rt.Nth(o, 1), "b")
	assertSymbol(t, rt, rt.Nth(o, 2), "c")
}

func TestParseDottedList(t *testing.T) {
	rt := vm.New(vm.Options{})
	o := parseOne(t, rt, "(a b c . d)")

	if !rt.ImproperList(o, 3) {
		t.Fatalf("not an improper list of 3: %s", rt.Format(o))
	}
	assertSymbol(t, rt, rt.Nth(o, 0), "a")
	assertSymbol(t, rt, rt.Nth(o, 1), "b")
	assertSymbol(t, rt, rt.Nth(o, 2), "c")
	assertSymbol(t, rt, rt.Cdddr(o), "d")
}

func TestParseVector(t *testing.T) {
	rt := vm.New(vm.Options{})
	o := parseOne(t, rt, "#(a b c)")

	if rt.Type(o) != vm.TypeVector || rt.VectorLen(o) != 3 {
		t.Fatalf("got %s", rt.Format(o))
	}
	assertSymbol(t, rt, rt.VectorRef(o, 0), "a")
	assertSymbol(t, rt, rt.VectorRef(o, 1), "b")
	assertSymbol(t, rt, rt.VectorRef(o, 2), "c")
}

func TestParseQuoteSugar(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'x", "(quote x)"},
		{"`x", "(quasiquote x)"},
		{",x", "(unquote x)"},
		{",@x", "(unquote-splicing x)"},
		{"''x", "(quote (quote x))"},
		{"'(a . b)", "(quote (a . b))"},
		{"`(a ,b ,@c)", "(quasiquote (a (unquote b) (unquote-splicing c)))"},
	}

	for _, tc := range tests {
		rt := vm.New(vm.Options{})
		o := parseOne(t, rt, tc.input)
		if got := rt.Format(o); got != tc.want {
			t.Errorf("parse %q = %s, want %s", tc.input, got, tc.want)
		}
	}

	rt := vm.New(vm.Options{})
	o := parseOne(t, rt, "'x")
	if !rt.ProperList(o, 2) {
		t.Fatal("'x should be a 2-element list")
	}
	assertSymbol(t, rt, rt.Car(o), "quote")
}

func TestParseNested(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(a (b (c)) #(d (e)) \"f\")", `(a (b (c)) #(d (e)) "f")`},
		{"(define (f x) (+ x 1))", "(define (f x) (+ x 1))"},
		{"#(#() ())", "#(#() ())"},
		{"(1 -2 +3 #\\a #\\space)", `(1 -2 3 #\a #\space)`},
		{"(... ! $x <=? a.b c+ d-)", "(... ! $x <=? a.b c+ d-)"},
		{"(a . (b c))", "(a b c)"},
		{"(a;c\n b)", "(a b)"},
		{"foo; trailing comment", "foo"},
	}

	for _, tc := range tests {
		rt := vm.New(vm.Options{})
		o := parseOne(t, rt, tc.input)
		if got := rt.Format(o); got != tc.want {
			t.Errorf("parse %q = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	rt := vm.New(vm.Options{})
	values := []vm.Object{
		vm.Integer(0),
		vm.Integer(-42),
		vm.Integer(vm.MaxInteger),
		vm.Character('x'),
		vm.Character(' '),
		vm.Character('\t'),
		vm.Character('('),
		vm.Character(0xFFFD),
		vm.True,
		vm.False,
		vm.EmptyList,
		rt.Symbol("hello"),
		rt.Symbol("+"),
		rt.MakeString("plain"),
		rt.MakeString("esc\"aped\\\n\t"),
	}

	for _, v := range values {
		text := rt.Format(v)
		parsed, err := ReadString(rt, text)
		if err != nil {
			t.Errorf("ReadString(%q): %v", text, err)
			continue
		}
		if got := rt.Format(parsed); got != text {
			t.Errorf("round trip %q -> %q", text, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		pos   int
	}{
		{"(a b", MsgUnmatchedParen, 4},
		{"#(a b", MsgUnmatchedParen, 5},
		{"(a . b c)", MsgUnmatchedParen, 7},
		{"(a . b", MsgUnmatchedParen, 6},
		{`"abc`, MsgUnmatchedQuote, 0},
		{`"abc\"`, MsgUnmatchedQuote, 0},
		{`"\q"`, MsgUnknownEscape, 0},
		{"(x \"\\q\")", MsgUnknownEscape, 3},
		{"'", MsgQuoteArgument, 1},
		{"(a ,@", MsgQuoteArgument, 5},
		{")", MsgUnknownToken, 0},
		{"[a]", MsgUnknownToken, 0},
		{"(a . )", MsgUnknownToken, 5},
		{"(. a)", MsgUnknownToken, 1},
		{"3.14", MsgUnknownToken, 0},
		{"1abc", MsgUnknownToken, 0},
		{"#abc", MsgUnknownToken, 0},
		{"99999999999999999999", MsgIntegerRange, 0},
		{"4611686018427387904", MsgIntegerRange, 0},
		{`#\bogus`, MsgUnknownCharacter, 0},
	}

	for _, tc := range tests {
		rt := vm.New(vm.Options{})
		o, err := ReadString(rt, tc.input)

		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("parse %q: err = %v, want *ParseError", tc.input, err)
			continue
		}
		if perr.Message != tc.msg || perr.Pos != tc.pos {
			t.Errorf("parse %q: got %q at %d, want %q at %d", tc.input, perr.Message, perr.Pos, tc.msg, tc.pos)
		}
		if o != vm.Undefined {
			t.Errorf("parse %q: returned %s on error", tc.input, rt.Format(o))
		}
		if !rt.HasError() {
			t.Errorf("parse %q: pending error not set", tc.input)
			continue
		}
		fault := rt.Fault()
		if fault.Signal != ParseSignal {
			t.Errorf("parse %q: signal = %q", tc.input, fault.Signal)
		}
		if fault.Message != perr.Error() {
			t.Errorf("parse %q: payload = %q, want %q", tc.input, fault.Message, perr.Error())
		}
		if !strings.Contains(fault.Message, tc.msg) {
			t.Errorf("parse %q: payload %q lacks %q", tc.input, fault.Message, tc.msg)
		}
		if rt.Frame().Len() != 0 || rt.Depth() != 1 {
			t.Errorf("parse %q: left %d values, depth %d", tc.input, rt.Frame().Len(), rt.Depth())
		}
	}
}

func TestParseErrorFormat(t *testing.T) {
	err := &ParseError{Pos: 12, Message: MsgUnknownToken}
	if err.Error() != "At 12: unknown token" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParseEOFIsNotAnError(t *testing.T) {
	rt := vm.New(vm.Options{})
	o, err := ReadString(rt, "   ; only a comment\n")

	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if o != vm.Undefined || rt.HasError() || rt.Frame().Len() != 0 {
		t.Error("EOF must push nothing and set no error")
	}
}

func TestParseRefusesWhileErrorPending(t *testing.T) {
	rt := vm.New(vm.Options{})
	rt.Raisef("earlier", "still pending")

	_, err := ReadString(rt, "a")
	if err == nil || err.Error() != "still pending" {
		t.Errorf("err = %v, want the pending fault", err)
	}
	if _, ok := rt.Symbols().Lookup("a"); ok {
		t.Error("nothing should be read while an error is pending")
	}
}

func TestParseLeavesCallerFrame(t *testing.T) {
	rt := vm.New(vm.Options{})
	rt.Push(vm.Integer(7))

	o, err := ReadString(rt, "(x y)")
	if err != nil {
		t.Fatal(err)
	}
	if rt.Frame().Len() != 2 || rt.Peek(0) != o || rt.Peek(1) != vm.Integer(7) {
		t.Error("result should be pushed on top of the caller's values")
	}

	_, err = ReadString(rt, "(x")
	if err == nil {
		t.Fatal("expected error")
	}
	if rt.Frame().Len() != 2 {
		t.Error("failed read must not touch the caller's frame")
	}
}

func TestParseUnderCollectionPressure(t *testing.T) {
	rt := vm.New(vm.Options{Threshold: 4})
	src := `(define (loop n acc) (if (= n 0) acc (loop (- n 1) (cons "x" acc))) #(1 2 "three" (4 . 5)) '(a b c))`

	o, err := ReadString(rt, src)
	if err != nil {
		t.Fatal(err)
	}
	rt.Collect()

	want := `(define (loop n acc) (if (= n 0) acc (loop (- n 1) (cons "x" acc))) #(1 2 "three" (4 . 5)) (quote (a b c)))`
	if got := rt.Format(o); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestParseDeepNesting(t *testing.T) {
	rt := vm.New(vm.Options{})
	depth := 100000
	src := strings.Repeat("(", depth) + "x" + strings.Repeat(")", depth)

	o, err := ReadString(rt, src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < depth; i++ {
		if !rt.ProperList(o, 1) {
			t.Fatalf("level %d is not a 1-element list", i)
		}
		o = rt.Car(o)
	}
	assertSymbol(t, rt, o, "x")
}

func TestParserContinuesAfterError(t *testing.T) {
	rt := vm.New(vm.Options{})
	p := NewParser(rt, strings.NewReader(") ok"))

	if _, err := p.ReadDatum(); err == nil {
		t.Fatal("expected error for ')'")
	}
	rt.TakeError()

	o, err := p.ReadDatum()
	if err != nil {
		t.Fatal(err)
	}
	assertSymbol(t, rt, o, "ok")
}
