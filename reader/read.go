package reader

import (
	"errors"
	"io"
	"strings"

	"github.com/chazu/brim/vm"
)

// ---------------------------------------------------------------------------
// Top-level drivers
// ---------------------------------------------------------------------------
//
// Each driver opens its own frame so partially read data stay rooted, and
// closes it before returning. On success the result is pushed onto the
// caller's frame; on failure the caller's frame is untouched and the
// runtime's pending error is set.

// ReadDatum reads one datum from r. It returns io.EOF, pushing nothing and
// setting no error, if r holds no data.
func ReadDatum(rt *vm.Runtime, r io.Reader) (vm.Object, error) {
	return NewParser(rt, r).ReadDatum()
}

// ReadAll reads every datum in r and returns them as a proper list.
func ReadAll(rt *vm.Runtime, r io.Reader) (vm.Object, error) {
	return NewParser(rt, r).readSequence("")
}

// ReadProgram reads every datum in r and wraps them in a (begin ...) form.
func ReadProgram(rt *vm.Runtime, r io.Reader) (vm.Object, error) {
	return NewParser(rt, r).readSequence("begin")
}

// ReadString reads one datum from src.
func ReadString(rt *vm.Runtime, src string) (vm.Object, error) {
	return ReadDatum(rt, strings.NewReader(src))
}

// ReadDatum reads the parser's next datum inside a fresh frame and returns
// it to the caller's frame.
func (p *Parser) ReadDatum() (vm.Object, error) {
	p.rt.PushFrame()
	if _, err := p.Read(); err != nil {
		p.rt.PopFrame()
		return vm.Undefined, err
	}
	return p.rt.Return(), nil
}

func (p *Parser) readSequence(head string) (vm.Object, error) {
	p.rt.PushFrame()
	n := 0
	if head != "" {
		p.rt.Intern(head)
		n++
	}
	for {
		_, err := p.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.rt.PopFrame()
			return vm.Undefined, err
		}
		n++
	}
	p.rt.BuildList(n, true)
	return p.rt.Return(), nil
}
