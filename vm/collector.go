package vm

import (
	"time"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Collector: mark-and-sweep over the heap arena
// ---------------------------------------------------------------------------

// DefaultThreshold is the registry size at which allocation triggers a
// collection.
const DefaultThreshold = 1000

// RootSet supplies the objects a collection marks from.
type RootSet interface {
	EachRoot(fn func(Object))
}

// CollectorStats describes the heap at a point in time.
type CollectorStats struct {
	Total   int // blocks in the registry
	Live    int // blocks reachable from the roots (symbols included)
	Dead    int // blocks a collection would reclaim
	Symbols int
	Cycles  uint64
}

// CycleStats holds statistics from a single collection.
type CycleStats struct {
	Before   int
	After    int
	Swept    int
	Duration time.Duration
}

// Collector owns every heap block. It allocates, marks from a RootSet and
// sweeps whatever is unreachable. Symbol blocks are never swept.
type Collector struct {
	heap       arena
	roots      RootSet
	threshold  int
	inhibitors int
	cycles     uint64
	last       CycleStats
	work       []Object
	log        commonlog.Logger
}

// NewCollector creates a collector that marks from roots. A threshold of
// zero or less selects DefaultThreshold.
func NewCollector(roots RootSet, threshold int) *Collector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Collector{
		roots:     roots,
		threshold: threshold,
		log:       commonlog.GetLogger("brim.gc"),
	}
}

// allocate registers b, collecting first if the registry has reached the
// threshold and collection is not inhibited. The new block starts unmarked.
func (gc *Collector) allocate(t Type, b block) Object {
	if gc.heap.count >= gc.threshold && gc.inhibitors == 0 {
		gc.Collect()
	}
	h := b.header()
	h.Type = t
	h.Mark = false
	return gc.heap.insert(b)
}

// Inhibit suspends collection until a matching Allow. Calls nest.
func (gc *Collector) Inhibit() {
	gc.inhibitors++
}

// Allow undoes one Inhibit.
func (gc *Collector) Allow() {
	if gc.inhibitors == 0 {
		panic("Collector.Allow: not inhibited")
	}
	gc.inhibitors--
}

// Inhibited reports whether collection is currently suspended.
func (gc *Collector) Inhibited() bool {
	return gc.inhibitors > 0
}

// Threshold returns the registry size that triggers collection.
func (gc *Collector) Threshold() int {
	return gc.threshold
}

// SetThreshold changes the registry size that triggers collection.
func (gc *Collector) SetThreshold(n int) {
	if n <= 0 {
		n = DefaultThreshold
	}
	gc.threshold = n
}

// Size returns the number of blocks in the registry.
func (gc *Collector) Size() int {
	return gc.heap.count
}

// Contains reports whether o references a block still in the registry.
func (gc *Collector) Contains(o Object) bool {
	return gc.heap.contains(o)
}

// LastCycle returns statistics from the most recent collection.
func (gc *Collector) LastCycle() CycleStats {
	return gc.last
}

// Collect marks everything reachable from the roots and sweeps the rest.
// Panics if collection is inhibited.
func (gc *Collector) Collect() CycleStats {
	if gc.inhibitors > 0 {
		panic("Collector.Collect: collection is inhibited")
	}
	start := time.Now()
	before := gc.heap.count

	gc.markRoots()
	swept := gc.sweep()

	gc.cycles++
	gc.last = CycleStats{
		Before:   before,
		After:    gc.heap.count,
		Swept:    swept,
		Duration: time.Since(start),
	}
	gc.log.Debugf("collect #%d: %d -> %d blocks (%d swept) in %s",
		gc.cycles, before, gc.heap.count, swept, gc.last.Duration)
	return gc.last
}

// Stats reports the registry size and how much of it is reachable, without
// reclaiming anything.
func (gc *Collector) Stats() CollectorStats {
	gc.markRoots()
	stats := CollectorStats{Total: gc.heap.count, Cycles: gc.cycles}
	for _, b := range gc.heap.slots {
		if b == nil {
			continue
		}
		h := b.header()
		if h.Type == TypeSymbol {
			stats.Symbols++
		}
		if h.Mark || h.Type == TypeSymbol {
			stats.Live++
		}
		h.Mark = false
	}
	stats.Dead = stats.Total - stats.Live
	return stats
}

func (gc *Collector) markRoots() {
	if gc.roots == nil {
		return
	}
	gc.roots.EachRoot(gc.mark)
}

// mark sets the mark bit on every block reachable from root. It walks an
// explicit work-list so deeply nested data does not grow the Go stack.
func (gc *Collector) mark(root Object) {
	gc.work = append(gc.work[:0], root)
	for len(gc.work) > 0 {
		o := gc.work[len(gc.work)-1]
		gc.work = gc.work[:len(gc.work)-1]
		if o.Immediate() {
			continue
		}
		b := gc.heap.get(o)
		h := b.header()
		if h.Mark {
			continue
		}
		h.Mark = true
		switch v := b.(type) {
		case *pairBlock:
			gc.work = append(gc.work, v.cdr, v.car)
		case *vectorBlock:
			for i := len(v.elements) - 1; i >= 0; i-- {
				gc.work = append(gc.work, v.elements[i])
			}
		case *errorBlock:
			gc.work = append(gc.work, v.payload, v.signal)
		}
	}
}

// sweep removes unmarked non-symbol blocks and clears the mark bit on the
// survivors. It returns the number of blocks removed.
func (gc *Collector) sweep() int {
	swept := 0
	for i, b := range gc.heap.slots {
		if b == nil {
			continue
		}
		h := b.header()
		if !h.Mark && h.Type != TypeSymbol {
			gc.heap.remove(uint32(i))
			swept++
			continue
		}
		h.Mark = false
	}
	return swept
}

// reset drops every non-symbol block without marking.
func (gc *Collector) reset() {
	for i, b := range gc.heap.slots {
		if b != nil && b.header().Type != TypeSymbol {
			gc.heap.remove(uint32(i))
		}
	}
	gc.inhibitors = 0
}
