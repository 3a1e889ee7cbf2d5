package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a primitive instruction.
type Opcode byte

const (
	OpIntern      Opcode = iota // push interned symbol (Name)
	OpPushString                // push new string (Data)
	OpCons                      // pop cdr, car; push pair
	OpBuildList                 // pop N values (+ tail unless FixTail); push list
	OpBuildVector               // pop N values; push vector
	OpRaiseError                // pop payload, signal; set pending error
	OpReturn                    // pop frame; push its top into the caller
)

var opcodeNames = [...]string{
	OpIntern:      "INTERN",
	OpPushString:  "PUSH_STRING",
	OpCons:        "CONS",
	OpBuildList:   "BUILD_LIST",
	OpBuildVector: "BUILD_VECTOR",
	OpRaiseError:  "RAISE_ERROR",
	OpReturn:      "RETURN",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_%02X", byte(op))
}

// Instruction is one primitive instruction with its operands.
type Instruction struct {
	Op      Opcode
	Name    string // OpIntern
	Data    string // OpPushString
	N       int    // OpBuildList, OpBuildVector
	FixTail bool   // OpBuildList
}

func (in Instruction) String() string {
	switch in.Op {
	case OpIntern:
		return "INTERN " + in.Name
	case OpPushString:
		return "PUSH_STRING " + strconv.Quote(in.Data)
	case OpBuildList:
		if in.FixTail {
			return fmt.Sprintf("BUILD_LIST %d", in.N)
		}
		return fmt.Sprintf("BUILD_LIST %d +tail", in.N)
	case OpBuildVector:
		return fmt.Sprintf("BUILD_VECTOR %d", in.N)
	}
	return in.Op.String()
}

// Disassemble renders a program one instruction per line.
func Disassemble(program []Instruction) string {
	var sb strings.Builder
	for i, in := range program {
		fmt.Fprintf(&sb, "%04d %s\n", i, in)
	}
	return sb.String()
}

// Execute runs program against the current frame. It stops at the first
// instruction that leaves an error pending and returns that error as a
// *Fault.
func (rt *Runtime) Execute(program ...Instruction) error {
	if rt.HasError() {
		return rt.Fault()
	}
	for _, in := range program {
		switch in.Op {
		case OpIntern:
			rt.Intern(in.Name)
		case OpPushString:
			rt.PushString(in.Data)
		case OpCons:
			rt.Cons()
		case OpBuildList:
			rt.BuildList(in.N, in.FixTail)
		case OpBuildVector:
			rt.BuildVector(in.N)
		case OpRaiseError:
			rt.Raise()
		case OpReturn:
			rt.Return()
		default:
			panic("Runtime.Execute: unknown opcode " + in.Op.String())
		}
		if rt.HasError() {
			return rt.Fault()
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Primitive instructions
// ---------------------------------------------------------------------------
//
// Each instruction assumes the current frame already holds the values it
// consumes; a shortfall panics.

// Intern pushes the symbol for name.
func (rt *Runtime) Intern(name string) Object {
	sym := rt.Symbol(name)
	rt.Push(sym)
	return sym
}

// PushString pushes a new string.
func (rt *Runtime) PushString(data string) Object {
	return rt.MakeString(data)
}

// Cons pops cdr (top) and car (next) and pushes the pair.
func (rt *Runtime) Cons() Object {
	f := rt.Frame()
	cdr, car := f.Peek(0), f.Peek(1)
	p := rt.NewPair(car, cdr)
	f.PopN(2)
	f.Push(p)
	return p
}

// BuildList pops n values, plus a tail from the top when fixTail is false,
// and pushes the list of those values in push order. With fixTail the tail
// is EmptyList.
func (rt *Runtime) BuildList(n int, fixTail bool) Object {
	f := rt.Frame()
	offset := 0
	head := EmptyList
	if !fixTail {
		head = f.Peek(0)
		offset = 1
	}
	if n+offset > f.Len() {
		panic("Runtime.BuildList: stack underflow")
	}
	rt.Inhibit()
	for i := 0; i < n; i++ {
		head = rt.NewPair(f.Peek(offset+i), head)
	}
	f.PopN(n + offset)
	f.Push(head)
	rt.Allow()
	return head
}

// BuildVector pops n values and pushes a vector of them in push order.
func (rt *Runtime) BuildVector(n int) Object {
	f := rt.Frame()
	if n > f.Len() {
		panic("Runtime.BuildVector: stack underflow")
	}
	elements := make([]Object, n)
	for i := 0; i < n; i++ {
		elements[n-1-i] = f.Peek(i)
	}
	v := rt.gc.allocate(TypeVector, &vectorBlock{elements: elements})
	f.PopN(n)
	f.Push(v)
	return v
}

// Raise pops payload (top) and signal (next) and stores a new Error in the
// pending slot. Nothing is pushed.
func (rt *Runtime) Raise() {
	f := rt.Frame()
	payload, signal := f.Peek(0), f.Peek(1)
	rt.RaiseError(signal, payload)
	f.PopN(2)
}

// Return pops the current frame and pushes its top value into the frame
// that becomes current.
func (rt *Runtime) Return() Object {
	o := rt.Pop()
	rt.PopFrame()
	rt.Push(o)
	return o
}
