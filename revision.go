package canopy

// Revision is a monotonically increasing token attached to a cached world
// transform. Staleness is detected by comparing revisions, not by walking
// dirty flags: a node records the revision of its parent's cache at the
// moment it recomputed, and any mismatch later means the parent has moved.
type Revision uint32

const (
	// RevisionStale marks a cache that must be recomputed before use.
	// It is also the zero value of a never-computed cache.
	RevisionStale Revision = 0

	// RevisionNoParent marks a fresh cache on a node with no parent.
	RevisionNoParent Revision = 1

	// RevisionInitial is the first revision a recomputed cache can carry.
	// Every genuinely fresh revision is >= RevisionInitial.
	RevisionInitial Revision = 2
)

// next returns the revision following r. Incrementing past the maximum
// representable value wraps to RevisionInitial so that a live cache never
// carries one of the two sentinel values.
func (r Revision) next() Revision {
	r++
	if r < RevisionInitial {
		return RevisionInitial
	}
	return r
}
