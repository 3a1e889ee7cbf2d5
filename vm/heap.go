package vm

// ---------------------------------------------------------------------------
// Heap blocks
// ---------------------------------------------------------------------------

// Header is the common prefix of every heap block. Any heap reference can be
// viewed as a Header to learn its variant and mark status without knowing
// the concrete layout.
type Header struct {
	Type Type
	Mark bool
}

// block is implemented by every heap variant.
type block interface {
	header() *Header
}

func (h *Header) header() *Header { return h }

type symbolBlock struct {
	Header
	name string
}

type stringBlock struct {
	Header
	data string
}

type pairBlock struct {
	Header
	car Object
	cdr Object
}

type vectorBlock struct {
	Header
	elements []Object
}

type errorBlock struct {
	Header
	signal  Object
	payload Object
}

// ---------------------------------------------------------------------------
// Arena
// ---------------------------------------------------------------------------

// arena holds every heap block. A heap Object's payload is its slot index;
// nil slots are free and recycled through the free list.
type arena struct {
	slots []block
	free  []uint32
	count int
}

func (a *arena) insert(b block) Object {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = b
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, b)
	}
	a.count++
	return heapObject(idx)
}

func (a *arena) remove(idx uint32) {
	a.slots[idx] = nil
	a.free = append(a.free, idx)
	a.count--
}

func (a *arena) get(o Object) block {
	idx := o.index()
	if int(idx) >= len(a.slots) || a.slots[idx] == nil {
		panic("arena.get: dangling heap reference")
	}
	return a.slots[idx]
}

func (a *arena) contains(o Object) bool {
	if !o.IsHeap() {
		return false
	}
	idx := o.index()
	return int(idx) < len(a.slots) && a.slots[idx] != nil
}

// ---------------------------------------------------------------------------
// Typed access
// ---------------------------------------------------------------------------

// Header returns the header of the heap block referenced by o.
// Panics if o is not a live heap reference.
func (rt *Runtime) Header(o Object) *Header {
	return rt.gc.heap.get(o).header()
}

// Type decodes the variant of o, dereferencing the header for heap values.
func (rt *Runtime) Type(o Object) Type {
	if t, ok := o.ImmediateType(); ok {
		return t
	}
	return rt.Header(o).Type
}

// Is reports whether o has variant t.
func (rt *Runtime) Is(o Object, t Type) bool {
	return rt.Type(o) == t
}

func (rt *Runtime) pair(o Object, op string) *pairBlock {
	if o.IsHeap() {
		if p, ok := rt.gc.heap.get(o).(*pairBlock); ok {
			return p
		}
	}
	panic("Object." + op + ": not a pair")
}

func (rt *Runtime) vector(o Object, op string) *vectorBlock {
	if o.IsHeap() {
		if v, ok := rt.gc.heap.get(o).(*vectorBlock); ok {
			return v
		}
	}
	panic("Object." + op + ": not a vector")
}

func (rt *Runtime) errorValue(o Object, op string) *errorBlock {
	if o.IsHeap() {
		if e, ok := rt.gc.heap.get(o).(*errorBlock); ok {
			return e
		}
	}
	panic("Object." + op + ": not an error")
}

// Car returns the first field of a pair.
func (rt *Runtime) Car(o Object) Object { return rt.pair(o, "Car").car }

// Cdr returns the second field of a pair.
func (rt *Runtime) Cdr(o Object) Object { return rt.pair(o, "Cdr").cdr }

// SetCar replaces the first field of a pair.
func (rt *Runtime) SetCar(o, car Object) { rt.pair(o, "SetCar").car = car }

// SetCdr replaces the second field of a pair.
func (rt *Runtime) SetCdr(o, cdr Object) { rt.pair(o, "SetCdr").cdr = cdr }

func (rt *Runtime) Caar(o Object) Object  { return rt.Car(rt.Car(o)) }
func (rt *Runtime) Cadr(o Object) Object  { return rt.Car(rt.Cdr(o)) }
func (rt *Runtime) Cdar(o Object) Object  { return rt.Cdr(rt.Car(o)) }
func (rt *Runtime) Cddr(o Object) Object  { return rt.Cdr(rt.Cdr(o)) }
func (rt *Runtime) Caddr(o Object) Object { return rt.Car(rt.Cddr(o)) }
func (rt *Runtime) Cdddr(o Object) Object { return rt.Cdr(rt.Cddr(o)) }

// StringData returns the contents of a string.
func (rt *Runtime) StringData(o Object) string {
	if o.IsHeap() {
		if s, ok := rt.gc.heap.get(o).(*stringBlock); ok {
			return s.data
		}
	}
	panic("Object.StringData: not a string")
}

// SymbolName returns the name of a symbol.
func (rt *Runtime) SymbolName(o Object) string {
	if o.IsHeap() {
		if s, ok := rt.gc.heap.get(o).(*symbolBlock); ok {
			return s.name
		}
	}
	panic("Object.SymbolName: not a symbol")
}

// VectorLen returns the number of elements in a vector.
func (rt *Runtime) VectorLen(o Object) int {
	return len(rt.vector(o, "VectorLen").elements)
}

// VectorRef returns the element at index i of a vector.
func (rt *Runtime) VectorRef(o Object, i int) Object {
	v := rt.vector(o, "VectorRef")
	if i < 0 || i >= len(v.elements) {
		panic("Object.VectorRef: index out of range")
	}
	return v.elements[i]
}

// VectorSet replaces the element at index i of a vector.
func (rt *Runtime) VectorSet(o Object, i int, elt Object) {
	v := rt.vector(o, "VectorSet")
	if i < 0 || i >= len(v.elements) {
		panic("Object.VectorSet: index out of range")
	}
	v.elements[i] = elt
}

// Elements returns a copy of a vector's elements.
func (rt *Runtime) Elements(o Object) []Object {
	v := rt.vector(o, "Elements")
	out := make([]Object, len(v.elements))
	copy(out, v.elements)
	return out
}

// Signal returns the signal of an error value.
func (rt *Runtime) Signal(o Object) Object { return rt.errorValue(o, "Signal").signal }

// Payload returns the payload of an error value.
func (rt *Runtime) Payload(o Object) Object { return rt.errorValue(o, "Payload").payload }
