package canopy

import (
	"sync"
	"sync/atomic"
	"weak"
)

// Handle is an opaque identifier for a registered Node. Handles are dense
// nonzero integers, recycled after release, and resolved through Lookup or
// TryLookup rather than dereferenced.
type Handle uint32

// NilHandle is the reserved null handle. It is never issued and always
// reports not-found.
const NilHandle Handle = 0

// registry is the process-wide identity table. Entries hold weak
// references: a node that becomes unreachable is reclaimed by the next
// lookup touching its handle, which recycles the handle as well.
//
// Allocation, lookup, and release are safe for concurrent use from loader
// or worker threads. The fast paths (free handle available, map entry
// present) are lock-free; minting a brand-new handle is a single atomic
// increment and cannot issue duplicates.
var registry struct {
	entries sync.Map // Handle -> weak.Pointer[Node]
	free    freeStack
	last    atomic.Uint32 // highest handle ever minted
}

// Allocate binds a fresh or recycled handle to owner and returns it.
// The registry does not keep owner alive.
func Allocate(owner *Node) Handle {
	h, ok := registry.free.pop()
	if !ok {
		h = Handle(registry.last.Add(1))
	}
	registry.entries.Store(h, weak.Make(owner))
	return h
}

// TryLookup resolves h to a live node. A handle whose node has been
// garbage collected is reclaimed on the spot: the entry is dropped, the
// handle goes back on the free list, and ok is false.
func TryLookup(h Handle) (*Node, bool) {
	v, found := registry.entries.Load(h)
	if !found {
		return nil, false
	}
	n := v.(weak.Pointer[Node]).Value()
	if n == nil {
		// Delete only the observed dead entry: between the Load above
		// and this point a racing Allocate may have recycled h and
		// bound it to a live node. CompareAndDelete also ensures only
		// one of several racing lookups pushes the handle.
		if registry.entries.CompareAndDelete(h, v) {
			registry.free.push(h)
		}
		return nil, false
	}
	return n, true
}

// Lookup resolves h to a live node, returning ErrNotFound on any miss.
// NilHandle, never-issued handles, and released or collected nodes are all
// the expected miss path, not a usage error.
func Lookup(h Handle) (*Node, error) {
	n, ok := TryLookup(h)
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// Release removes h from the registry and recycles it immediately, without
// waiting for its node to be collected. Releasing NilHandle or an unknown
// handle is a no-op, so a double release never duplicates a free handle.
func Release(h Handle) {
	if h == NilHandle {
		return
	}
	v, present := registry.entries.Load(h)
	if !present {
		return
	}
	// Racing releases of the same handle both observe the same entry;
	// CompareAndDelete lets exactly one of them recycle it.
	if registry.entries.CompareAndDelete(h, v) {
		registry.free.push(h)
	}
}

// freeStack is a lock-free Treiber stack of recycled handles. The usual
// ABA concern does not apply: a popped node cannot be reused at the same
// address while another goroutine still holds a pointer to it.
type freeStack struct {
	head atomic.Pointer[freeNode]
}

type freeNode struct {
	h    Handle
	next *freeNode
}

func (s *freeStack) push(h Handle) {
	n := &freeNode{h: h}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
	}
}

func (s *freeStack) pop() (Handle, bool) {
	for {
		old := s.head.Load()
		if old == nil {
			return NilHandle, false
		}
		if s.head.CompareAndSwap(old, old.next) {
			return old.h, true
		}
	}
}
