package vm

// ---------------------------------------------------------------------------
// List shape predicates
// ---------------------------------------------------------------------------

// walk follows the cdr chain of o and returns the number of pairs and the
// first non-pair value. A chain longer than the registry is cyclic; walk
// stops there and returns the pair it reached.
func (rt *Runtime) walk(o Object) (int, Object) {
	n, limit := 0, rt.gc.Size()
	for rt.Is(o, TypePair) && n < limit {
		n++
		o = rt.Cdr(o)
	}
	return n, o
}

// ProperList reports whether o is a proper list of exactly n items.
func (rt *Runtime) ProperList(o Object, n int) bool {
	return rt.ProperListRange(o, n, n)
}

// ProperListRange reports whether o is a list ending in EmptyList whose
// length is within [min, max].
func (rt *Runtime) ProperListRange(o Object, min, max int) bool {
	n, tail := rt.walk(o)
	return tail == EmptyList && min <= n && n <= max
}

// ImproperList reports whether o is a chain of exactly n pairs ending in
// something other than EmptyList. A non-pair, non-empty value is an improper
// list of zero items. A cyclic chain is neither proper nor improper.
func (rt *Runtime) ImproperList(o Object, n int) bool {
	return rt.ImproperListRange(o, n, n)
}

// ImproperListRange is ImproperList with the pair count within [min, max].
func (rt *Runtime) ImproperListRange(o Object, min, max int) bool {
	n, tail := rt.walk(o)
	return tail != EmptyList && !rt.Is(tail, TypePair) && min <= n && n <= max
}

// ListLength returns the number of pairs in the cdr chain of o.
func (rt *Runtime) ListLength(o Object) int {
	n, _ := rt.walk(o)
	return n
}

// Nth returns the car after following index cdrs. Panics if the list is too
// short.
func (rt *Runtime) Nth(o Object, index int) Object {
	for ; index > 0; index-- {
		o = rt.Cdr(o)
	}
	return rt.Car(o)
}

// ListElements returns the cars of the cdr chain of o and the terminating
// value. For a cyclic chain the terminating value is a pair.
func (rt *Runtime) ListElements(o Object) ([]Object, Object) {
	var out []Object
	for limit := rt.gc.Size(); rt.Is(o, TypePair) && len(out) < limit; {
		out = append(out, rt.Car(o))
		o = rt.Cdr(o)
	}
	return out, o
}
