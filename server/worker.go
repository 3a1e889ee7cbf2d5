package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/brim/vm"
)

// ErrStopped is returned by Do once the worker has been stopped.
var ErrStopped = errors.New("server: worker stopped")

// request represents a unit of work to be executed on the runtime goroutine.
type request struct {
	fn   func(*vm.Runtime) any
	done chan result
}

// result holds the return value from a runtime operation.
type result struct {
	value any
	err   error
}

// Worker serializes all access to one vm.Runtime through a single
// goroutine. A Runtime is not safe for concurrent use; LSP handlers run on
// their own goroutines and must go through the worker.
type Worker struct {
	rt       *vm.Runtime
	requests chan request
	quit     chan struct{}
	stop     sync.Once
	log      commonlog.Logger
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(rt *vm.Runtime) *Worker {
	w := &Worker{
		rt:       rt,
		requests: make(chan request, 64),
		quit:     make(chan struct{}),
		log:      commonlog.GetLogger("brim.lsp"),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn on the runtime. A panic is turned into an error and the
// runtime is reset, since the panicking operation may have left frames or
// the inhibitor count unbalanced.
func (w *Worker) execute(fn func(*vm.Runtime) any) result {
	var res result
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("%v", r)
				w.log.Errorf("runtime panic, resetting: %v", r)
				w.rt.Reset()
			}
		}()
		res.value = fn(w.rt)
	}()
	return res
}

// Do submits fn for execution on the runtime goroutine and blocks until it
// completes. Returns the result and any error (including panics).
func (w *Worker) Do(fn func(*vm.Runtime) any) (any, error) {
	req := request{
		fn:   fn,
		done: make(chan result, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrStopped
	}
	select {
	case res := <-req.done:
		return res.value, res.err
	case <-w.quit:
		return nil, ErrStopped
	}
}

// Stop shuts down the worker goroutine. Later calls to Do fail with
// ErrStopped.
func (w *Worker) Stop() {
	w.stop.Do(func() { close(w.quit) })
}
