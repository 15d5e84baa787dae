package canopy

import "sync"

// handleRemap maps handles recorded in serialized data to the handles their
// rebuilt nodes were allocated. Populated by deserialization, queried
// afterward by anything that held the old handles.
var handleRemap sync.Map // Handle -> Handle

// RecordHandleRemap records that a node serialized under old was rebuilt
// with handle replacement. Safe for concurrent use from loader threads.
func RecordHandleRemap(old, replacement Handle) {
	handleRemap.Store(old, replacement)
}

// RemappedHandle returns the replacement handle for a pre-deserialization
// handle. ok is false if old was never recorded.
func RemappedHandle(old Handle) (replacement Handle, ok bool) {
	v, ok := handleRemap.Load(old)
	if !ok {
		return NilHandle, false
	}
	return v.(Handle), true
}

// ResetHandleRemap clears the remap table. The table has no eviction
// policy: it grows without bound across deserialization passes until
// explicitly reset. Callers that deserialize repeatedly should reset
// between passes once dependents have re-resolved their handles.
func ResetHandleRemap() {
	handleRemap.Clear()
}
