package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/chazu/brim/reader"
	"github.com/chazu/brim/server"
	"github.com/chazu/brim/vm"
)

const maxCompletions = 50

// runREPL reads data interactively, printing each complete datum as it is
// entered. Input that ends inside an open construct continues on the next
// line.
func runREPL(rt *vm.Runtime, stdout io.Writer) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(func(input string) []string {
		return complete(rt, input)
	})

	fmt.Fprintln(stdout, "brim reader (Ctrl-D to quit)")

	var pending strings.Builder
	for {
		prompt := "brim> "
		if pending.Len() > 0 {
			prompt = "  ... "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				pending.Reset()
				continue
			}
			fmt.Fprintln(stdout)
			return 0
		}
		line.AppendHistory(input)

		pending.WriteString(input)
		pending.WriteByte('\n')
		out, more := replStep(rt, pending.String())
		if more {
			continue
		}
		for _, s := range out {
			fmt.Fprintf(stdout, ">> %s\n", s)
		}
		pending.Reset()
	}
}

// replStep reads every datum in src. It returns the lines to print, or
// more=true if src stops inside an unfinished datum.
func replStep(rt *vm.Runtime, src string) (out []string, more bool) {
	a := server.Analyze(rt, src)
	if a.Err != nil && incomplete(src, a.Err) {
		return nil, true
	}
	for _, f := range a.Forms {
		out = append(out, f.Text)
	}
	if a.Err != nil {
		out = append(out, a.Err.Error())
	}
	return out, false
}

func incomplete(src string, err *reader.ParseError) bool {
	switch err.Message {
	case reader.MsgUnmatchedParen, reader.MsgQuoteArgument:
		return err.Pos >= len(src)
	case reader.MsgUnmatchedQuote:
		// An unterminated string runs to the end of the input.
		tok := reader.NewStringLexer(src[err.Pos:]).NextToken()
		return err.Pos+len(tok.Literal) >= len(src)
	}
	return false
}

// complete offers interned symbols extending the last identifier in input.
func complete(rt *vm.Runtime, input string) []string {
	start := len(input)
	for start > 0 && !reader.IsDelimiter(input[start-1]) {
		start--
	}
	prefix := input[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range server.SymbolsWithPrefix(rt, prefix, maxCompletions) {
		out = append(out, input[:start]+name)
	}
	return out
}
