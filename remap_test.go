package canopy

import (
	"sync"
	"testing"
)

func TestHandleRemapRoundTrip(t *testing.T) {
	ResetHandleRemap()
	defer ResetHandleRemap()

	RecordHandleRemap(10, 42)
	RecordHandleRemap(11, 43)

	got, ok := RemappedHandle(10)
	if !ok || got != 42 {
		t.Errorf("RemappedHandle(10) = (%d, %v), want (42, true)", got, ok)
	}
	got, ok = RemappedHandle(11)
	if !ok || got != 43 {
		t.Errorf("RemappedHandle(11) = (%d, %v), want (43, true)", got, ok)
	}
}

func TestHandleRemapMiss(t *testing.T) {
	ResetHandleRemap()
	if got, ok := RemappedHandle(999); ok || got != NilHandle {
		t.Errorf("RemappedHandle(999) = (%d, %v), want (NilHandle, false)", got, ok)
	}
}

func TestHandleRemapOverwrite(t *testing.T) {
	ResetHandleRemap()
	defer ResetHandleRemap()

	// A later pass may rebuild the same old handle to a new target.
	RecordHandleRemap(5, 100)
	RecordHandleRemap(5, 200)
	if got, _ := RemappedHandle(5); got != 200 {
		t.Errorf("RemappedHandle(5) = %d, want the latest recording 200", got)
	}
}

func TestHandleRemapReset(t *testing.T) {
	RecordHandleRemap(1, 2)
	ResetHandleRemap()
	if _, ok := RemappedHandle(1); ok {
		t.Error("reset did not clear the table")
	}
}

func TestHandleRemapConcurrent(t *testing.T) {
	ResetHandleRemap()
	defer ResetHandleRemap()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			base := Handle(g * 1000)
			for i := Handle(0); i < 100; i++ {
				RecordHandleRemap(base+i, base+i+500)
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < 4; g++ {
		base := Handle(g * 1000)
		for i := Handle(0); i < 100; i++ {
			got, ok := RemappedHandle(base + i)
			if !ok || got != base+i+500 {
				t.Fatalf("RemappedHandle(%d) = (%d, %v)", base+i, got, ok)
			}
		}
	}
}
