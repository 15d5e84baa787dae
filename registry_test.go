package canopy

import (
	"errors"
	"runtime"
	"sync"
	"testing"
)

func TestAllocateNeverNil(t *testing.T) {
	for i := 0; i < 100; i++ {
		if NewNode("n").ID() == NilHandle {
			t.Fatal("Allocate issued NilHandle")
		}
	}
}

func TestTryLookupLive(t *testing.T) {
	n := NewNode("n")
	got, ok := TryLookup(n.ID())
	if !ok || got != n {
		t.Errorf("TryLookup(%d) = (%v, %v), want the node itself", n.ID(), got, ok)
	}
}

func TestLookupLive(t *testing.T) {
	n := NewNode("n")
	got, err := Lookup(n.ID())
	if err != nil || got != n {
		t.Errorf("Lookup(%d) = (%v, %v), want the node itself", n.ID(), got, err)
	}
}

func TestLookupMisses(t *testing.T) {
	tests := []struct {
		name string
		h    Handle
	}{
		{"nil handle", NilHandle},
		{"never issued", Handle(1 << 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := TryLookup(tt.h); ok {
				t.Error("TryLookup should miss")
			}
			if _, err := Lookup(tt.h); !errors.Is(err, ErrNotFound) {
				t.Errorf("Lookup = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestReleaseRecycles(t *testing.T) {
	drainFreeHandles()
	n := NewNode("n")
	h := n.ID()

	Release(h)
	if _, ok := TryLookup(h); ok {
		t.Error("released handle still resolves")
	}

	// The freed handle is reused by the next allocation.
	m := NewNode("m")
	if m.ID() != h {
		t.Errorf("next allocation got handle %d, want recycled %d", m.ID(), h)
	}
	runtime.KeepAlive(n)
}

func TestDoubleReleaseDoesNotDuplicate(t *testing.T) {
	drainFreeHandles()
	n := NewNode("n")
	h := n.ID()
	Release(h)
	Release(h) // must be a no-op

	a := NewNode("a")
	b := NewNode("b")
	if a.ID() == b.ID() {
		t.Errorf("double release handed out handle %d twice", a.ID())
	}
	runtime.KeepAlive(n)
}

func TestDisposeReleasesHandle(t *testing.T) {
	n := NewNode("n")
	h := n.ID()
	n.Dispose()
	if _, err := Lookup(h); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup after dispose = %v, want ErrNotFound", err)
	}
}

// allocateGhost creates a node that nothing keeps alive and returns only
// its handle.
func allocateGhost() Handle {
	return NewNode("ghost").ID()
}

func TestCollectedNodeReclaimedOnLookup(t *testing.T) {
	drainFreeHandles()
	h := allocateGhost()

	// Drop the only strong reference and force collection; the weak entry
	// is then dead and the next lookup reclaims it.
	runtime.GC()
	runtime.GC()

	if _, ok := TryLookup(h); ok {
		t.Fatalf("TryLookup(%d) resolved a collected node", h)
	}
	// Reclamation recycled the numeric handle.
	m := NewNode("m")
	if m.ID() != h {
		t.Errorf("next allocation got handle %d, want reclaimed %d", m.ID(), h)
	}
}

func TestStaleReclaimDoesNotEvictRecycledHandle(t *testing.T) {
	drainFreeHandles()
	h := allocateGhost()
	runtime.GC()
	runtime.GC()

	// A lookup that stalls after loading the dead entry would hold this
	// snapshot while the reclaim and a re-allocation complete underneath.
	stale, ok := registry.entries.Load(h)
	if !ok {
		t.Fatal("dead entry missing before reclaim")
	}

	if _, ok := TryLookup(h); ok {
		t.Fatal("collected node should not resolve")
	}
	m := NewNode("m")
	if m.ID() != h {
		t.Fatalf("recycled allocation got handle %d, want %d", m.ID(), h)
	}

	// The stalled lookup resumes: deleting through its stale snapshot
	// must miss the live entry and must not recycle the handle again.
	if registry.entries.CompareAndDelete(h, stale) {
		t.Error("stale reclaim removed a re-allocated live entry")
	}
	got, ok := TryLookup(h)
	if !ok || got != m {
		t.Errorf("TryLookup(%d) = (%v, %v), want the live node", h, got, ok)
	}
	if _, free := registry.free.pop(); free {
		t.Error("handle recycled twice; a later Allocate would duplicate it")
	}
	runtime.KeepAlive(m)
}

func TestConcurrentAllocateUnique(t *testing.T) {
	const goroutines = 8
	const perG = 200

	var wg sync.WaitGroup
	nodes := make([][]*Node, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			batch := make([]*Node, perG)
			for i := range batch {
				batch[i] = NewNode("w")
			}
			nodes[g] = batch
		}(g)
	}
	wg.Wait()

	seen := make(map[Handle]bool, goroutines*perG)
	for _, batch := range nodes {
		for _, n := range batch {
			if n.ID() == NilHandle {
				t.Fatal("concurrent Allocate issued NilHandle")
			}
			if seen[n.ID()] {
				t.Fatalf("handle %d issued twice", n.ID())
			}
			seen[n.ID()] = true
		}
	}
}

func TestConcurrentLookupRelease(t *testing.T) {
	const n = 100
	handles := make([]Handle, n)
	nodes := make([]*Node, n)
	for i := range handles {
		nodes[i] = NewNode("c")
		handles[i] = nodes[i].ID()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, h := range handles {
			_, _ = TryLookup(h)
		}
	}()
	go func() {
		defer wg.Done()
		for _, h := range handles {
			Release(h)
		}
	}()
	wg.Wait()

	for _, h := range handles {
		if _, ok := TryLookup(h); ok {
			t.Errorf("handle %d still resolves after release", h)
		}
	}
	runtime.KeepAlive(nodes)
}
