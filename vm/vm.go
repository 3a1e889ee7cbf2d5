package vm

// ---------------------------------------------------------------------------
// Runtime: one isolated interpreter core
// ---------------------------------------------------------------------------

// Options configures a Runtime.
type Options struct {
	// Threshold is the registry size that triggers collection on
	// allocation. Zero selects DefaultThreshold.
	Threshold int
}

// Runtime owns the heap, the symbol table, the frame stack and the pending
// error slot. A Runtime is not safe for concurrent use; give each goroutine
// its own or serialize access (see server.Worker).
type Runtime struct {
	gc      *Collector
	symbols *SymbolTable
	frames  []*Frame
	pending Object
}

// New creates a runtime with a single base frame.
func New(opts Options) *Runtime {
	rt := &Runtime{
		symbols: NewSymbolTable(),
		frames:  []*Frame{NewFrame()},
		pending: Undefined,
	}
	rt.gc = NewCollector(rt, opts.Threshold)
	return rt
}

// EachRoot calls fn for every value on every frame and for the pending
// error, if any.
func (rt *Runtime) EachRoot(fn func(Object)) {
	for _, f := range rt.frames {
		for _, o := range f.stack {
			fn(o)
		}
	}
	if rt.pending.Defined() {
		fn(rt.pending)
	}
}

// Collector returns the runtime's collector.
func (rt *Runtime) Collector() *Collector {
	return rt.gc
}

// Inhibit suspends collection; see Collector.Inhibit.
func (rt *Runtime) Inhibit() { rt.gc.Inhibit() }

// Allow undoes one Inhibit.
func (rt *Runtime) Allow() { rt.gc.Allow() }

// Collect runs a collection now.
func (rt *Runtime) Collect() CycleStats { return rt.gc.Collect() }

// Reset empties every frame, clears the pending error and drops all
// non-symbol blocks. Interned symbols survive.
func (rt *Runtime) Reset() {
	rt.frames = []*Frame{NewFrame()}
	rt.pending = Undefined
	rt.gc.reset()
}

// ---------------------------------------------------------------------------
// Frames
// ---------------------------------------------------------------------------

// PushFrame opens a new current frame.
func (rt *Runtime) PushFrame() *Frame {
	f := NewFrame()
	rt.frames = append(rt.frames, f)
	return f
}

// PopFrame discards the current frame and its contents.
// Panics on an attempt to pop the base frame.
func (rt *Runtime) PopFrame() {
	if len(rt.frames) <= 1 {
		panic("Runtime.PopFrame: cannot pop the base frame")
	}
	rt.frames[len(rt.frames)-1] = nil
	rt.frames = rt.frames[:len(rt.frames)-1]
}

// Frame returns the current frame.
func (rt *Runtime) Frame() *Frame {
	return rt.frames[len(rt.frames)-1]
}

// Depth returns the number of frames, the base frame included.
func (rt *Runtime) Depth() int {
	return len(rt.frames)
}

// Push pushes o onto the current frame.
func (rt *Runtime) Push(o Object) { rt.Frame().Push(o) }

// Pop pops the top of the current frame.
func (rt *Runtime) Pop() Object { return rt.Frame().Pop() }

// Peek returns a value from the current frame; Peek(0) is the top.
func (rt *Runtime) Peek(index int) Object { return rt.Frame().Peek(index) }

// ---------------------------------------------------------------------------
// Heap constructors (unrooted)
// ---------------------------------------------------------------------------
//
// These allocate and return a block without pushing it anywhere. Arguments
// that are heap Objects must already be rooted or the caller must hold the
// collector inhibited.

// NewString allocates a string.
func (rt *Runtime) NewString(data string) Object {
	return rt.gc.allocate(TypeString, &stringBlock{data: data})
}

// NewPair allocates a pair.
func (rt *Runtime) NewPair(car, cdr Object) Object {
	return rt.gc.allocate(TypePair, &pairBlock{car: car, cdr: cdr})
}

// NewVector allocates a vector holding a copy of elements.
func (rt *Runtime) NewVector(elements []Object) Object {
	elts := make([]Object, len(elements))
	copy(elts, elements)
	return rt.gc.allocate(TypeVector, &vectorBlock{elements: elts})
}

// NewError allocates an error value.
func (rt *Runtime) NewError(signal, payload Object) Object {
	return rt.gc.allocate(TypeError, &errorBlock{signal: signal, payload: payload})
}

// ---------------------------------------------------------------------------
// Rooted constructors
// ---------------------------------------------------------------------------
//
// These allocate a value and push it onto the current frame, which both
// returns it and keeps it alive for as long as it stays there.

// MakeString allocates a string and pushes it.
func (rt *Runtime) MakeString(data string) Object {
	o := rt.NewString(data)
	rt.Push(o)
	return o
}

// MakePair allocates a pair and pushes it.
func (rt *Runtime) MakePair(car, cdr Object) Object {
	rt.Inhibit()
	o := rt.NewPair(car, cdr)
	rt.Push(o)
	rt.Allow()
	return o
}

// MakeList builds a proper list from elements and pushes its head.
// Collection is inhibited for the whole build since the intermediate pairs
// are reachable only from here until the head is pushed.
func (rt *Runtime) MakeList(elements []Object) Object {
	rt.Inhibit()
	head := EmptyList
	for i := len(elements) - 1; i >= 0; i-- {
		head = rt.NewPair(elements[i], head)
	}
	rt.Push(head)
	rt.Allow()
	return head
}

// MakeVector builds a vector from elements and pushes it.
func (rt *Runtime) MakeVector(elements []Object) Object {
	rt.Inhibit()
	o := rt.NewVector(elements)
	rt.Push(o)
	rt.Allow()
	return o
}
