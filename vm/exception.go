package vm

import "fmt"

// ---------------------------------------------------------------------------
// Pending error slot
// ---------------------------------------------------------------------------
//
// Errors are first-class Error objects (signal + payload) held in a single
// slot shared by all frames. The first error wins: raising while the slot is
// set leaves it untouched. Fallible operations check HasError right after
// each step and return early without touching the stack.

// RaiseError allocates an Error and stores it in the pending slot. It
// reports false, allocating nothing, if an error is already pending.
// signal and payload must be rooted or the collector inhibited.
func (rt *Runtime) RaiseError(signal, payload Object) bool {
	if rt.pending.Defined() {
		return false
	}
	rt.Inhibit()
	rt.pending = rt.NewError(signal, payload)
	rt.Allow()
	return true
}

// Raisef raises an error whose signal is the interned symbol signal and
// whose payload is a string built from format and args.
func (rt *Runtime) Raisef(signal, format string, args ...any) bool {
	if rt.pending.Defined() {
		return false
	}
	rt.Inhibit()
	defer rt.Allow()
	sym := rt.Symbol(signal)
	msg := rt.NewString(fmt.Sprintf(format, args...))
	return rt.RaiseError(sym, msg)
}

// HasError reports whether an error is pending.
func (rt *Runtime) HasError() bool {
	return rt.pending.Defined()
}

// PendingError returns the pending Error object, or Undefined.
func (rt *Runtime) PendingError() Object {
	return rt.pending
}

// TakeError returns the pending Error object and clears the slot.
func (rt *Runtime) TakeError() Object {
	e := rt.pending
	rt.pending = Undefined
	return e
}

// Fault is the host-level view of an Error object.
type Fault struct {
	Signal  string
	Message string
	Object  Object
}

func (f *Fault) Error() string {
	return f.Message
}

// Fault describes the pending error, or returns nil if there is none.
func (rt *Runtime) Fault() *Fault {
	if !rt.pending.Defined() {
		return nil
	}
	return rt.FaultOf(rt.pending)
}

// FaultOf describes an Error object. A string payload becomes the message
// verbatim; anything else is rendered.
func (rt *Runtime) FaultOf(e Object) *Fault {
	signal := rt.Signal(e)
	payload := rt.Payload(e)
	f := &Fault{Object: e}
	if rt.Is(signal, TypeSymbol) {
		f.Signal = rt.SymbolName(signal)
	} else {
		f.Signal = rt.Format(signal)
	}
	if rt.Is(payload, TypeString) {
		f.Message = rt.StringData(payload)
	} else {
		f.Message = rt.Format(payload)
	}
	return f
}
