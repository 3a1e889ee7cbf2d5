package vm

// Frame is one operand stack. Frames nest strictly; every value on a live
// frame is a collection root.
type Frame struct {
	stack []Object
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{stack: make([]Object, 0, 16)}
}

// Push pushes o onto the stack.
func (f *Frame) Push(o Object) {
	f.stack = append(f.stack, o)
}

// Pop removes and returns the top of the stack.
func (f *Frame) Pop() Object {
	n := len(f.stack)
	if n == 0 {
		panic("Frame.Pop: stack underflow")
	}
	o := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return o
}

// PopN removes the top n values.
func (f *Frame) PopN(n int) {
	if n < 0 || n > len(f.stack) {
		panic("Frame.PopN: stack underflow")
	}
	f.stack = f.stack[:len(f.stack)-n]
}

// PopAt removes and returns the value index positions below the top;
// PopAt(0) is Pop.
func (f *Frame) PopAt(index int) Object {
	i := f.slot(index, "PopAt")
	o := f.stack[i]
	f.stack = append(f.stack[:i], f.stack[i+1:]...)
	return o
}

// Peek returns the value index positions below the top; Peek(0) is the top.
func (f *Frame) Peek(index int) Object {
	return f.stack[f.slot(index, "Peek")]
}

// Duplicate pushes a second copy of the top value.
func (f *Frame) Duplicate() {
	f.Push(f.Peek(0))
}

// Truncate drops values until the stack holds n.
func (f *Frame) Truncate(n int) {
	if n < 0 || n > len(f.stack) {
		panic("Frame.Truncate: invalid size")
	}
	f.stack = f.stack[:n]
}

// Len returns the number of values on the stack.
func (f *Frame) Len() int {
	return len(f.stack)
}

// Values returns a copy of the stack, bottom first.
func (f *Frame) Values() []Object {
	out := make([]Object, len(f.stack))
	copy(out, f.stack)
	return out
}

func (f *Frame) slot(index int, op string) int {
	if index < 0 || index >= len(f.stack) {
		panic("Frame." + op + ": stack underflow")
	}
	return len(f.stack) - 1 - index
}
