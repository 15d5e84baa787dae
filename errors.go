package canopy

import "errors"

var (
	// ErrCycle is returned by SetParent when the assignment would make the
	// node an ancestor of itself (including assigning a node as its own
	// parent). The tree is left unchanged.
	ErrCycle = errors.New("canopy: parent assignment would create a cycle")

	// ErrNotFound is returned by Lookup when a handle has no live node:
	// the handle is NilHandle, was never issued, was released, or its node
	// has been garbage collected. This is the expected miss path, not a
	// usage error.
	ErrNotFound = errors.New("canopy: no live node for handle")
)
