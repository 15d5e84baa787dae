package canopy

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Node is one entry in the scene graph. It holds an authoritative local
// transform plus cached world and inverse-world transforms; everything
// else exists to keep those caches correct without eager invalidation.
//
// Mutating Transform or Parent is O(1) and touches no descendant. The next
// World or InverseWorld read detects staleness by comparing the recorded
// parent revision against the parent's current one (recursively, since the
// parent may itself be stale) and recomputes only the stale suffix of the
// chain. Once fresh, repeated reads are O(1) per level.
//
// Nodes are not safe for concurrent use; the tree expects single-threaded
// access within an update/draw cycle.
type Node struct {
	id   Handle
	Name string

	// Hierarchy. children is kept in ascending handle order and is
	// duplicate-free; the symmetry X in P.children <=> X.parent == P
	// holds at every return.
	parent   *Node
	children []*Node

	// Local transform and its lazily maintained inverse.
	transform    ebiten.GeoM
	inverse      ebiten.GeoM
	inverseDirty bool

	// Cached composed transforms and the revisions they were computed at.
	world       ebiten.GeoM
	worldRev    Revision
	invWorld    ebiten.GeoM
	invWorldRev Revision

	// Last-observed snapshots of the parent's revisions. RevisionStale
	// forces recomputation on the next read; RevisionNoParent records a
	// fresh parentless cache.
	parentWorldRev    Revision
	parentInvWorldRev Revision

	disposed bool
}

// NewNode creates a node with an identity local transform and no parent,
// and registers it with the identity registry.
func NewNode(name string) *Node {
	n := &Node{Name: name}
	n.id = Allocate(n)
	return n
}

// ID returns the node's registry handle, or NilHandle after disposal.
func (n *Node) ID() Handle {
	return n.id
}

// --- Local transform ---

// Transform returns the node's local affine transform.
func (n *Node) Transform() ebiten.GeoM {
	return n.transform
}

// SetTransform replaces the node's local transform. O(1): only this node's
// own caches are invalidated; descendants observe the change lazily on
// their next world-transform read.
func (n *Node) SetTransform(m ebiten.GeoM) {
	n.transform = m
	n.inverseDirty = true
	n.parentWorldRev = RevisionStale
	n.parentInvWorldRev = RevisionStale
}

// InverseTransform returns the inverse of the local transform, recomputing
// it if the transform changed since the last call. A singular transform
// inverts to identity.
func (n *Node) InverseTransform() ebiten.GeoM {
	if n.inverseDirty {
		inv := n.transform
		if inv.IsInvertible() {
			inv.Invert()
		} else {
			inv.Reset()
		}
		n.inverse = inv
		n.inverseDirty = false
	}
	return n.inverse
}

// --- World transform ---

// staleWorld reports whether the cached world transform no longer reflects
// this node's transform or any ancestor's. The walk costs O(depth) only
// while something along the path is actually stale.
func (n *Node) staleWorld() bool {
	if n.parent == nil {
		return n.parentWorldRev != RevisionNoParent
	}
	return n.parentWorldRev != n.parent.worldRev || n.parent.staleWorld()
}

// World returns the node's composed transform: its local transform applied
// after every ancestor's. The cache is freshened on demand; the node's
// WorldRevision advances only when a recompute actually happens.
func (n *Node) World() ebiten.GeoM {
	if n.staleWorld() {
		if n.parent == nil {
			n.parentWorldRev = RevisionNoParent
			n.world = n.transform
		} else {
			pw := n.parent.World() // freshens the ancestor chain first
			n.parentWorldRev = n.parent.worldRev
			w := n.transform
			w.Concat(pw) // w = pw * local
			n.world = w
		}
		n.worldRev = n.worldRev.next()
	}
	return n.world
}

// WorldRevision returns the revision of the cached world transform. Two
// equal revisions read from the same node mean the world transform has not
// been recomputed in between, which makes the token a cheap has-this-moved
// signal. It is only authoritative immediately after a World call.
func (n *Node) WorldRevision() Revision {
	return n.worldRev
}

func (n *Node) staleInverseWorld() bool {
	if n.inverseDirty {
		return true
	}
	if n.parent == nil {
		return n.parentInvWorldRev != RevisionNoParent
	}
	return n.parentInvWorldRev != n.parent.invWorldRev || n.parent.staleInverseWorld()
}

// InverseWorld returns the inverse of the composed transform. The inverse
// of a product reverses multiplication order, so it composes as the local
// inverse applied before every ancestor's inverse.
func (n *Node) InverseWorld() ebiten.GeoM {
	if n.staleInverseWorld() {
		inv := n.InverseTransform()
		if n.parent == nil {
			n.parentInvWorldRev = RevisionNoParent
			n.invWorld = inv
		} else {
			pi := n.parent.InverseWorld()
			n.parentInvWorldRev = n.parent.invWorldRev
			pi.Concat(inv) // pi = invLocal * invParent
			n.invWorld = pi
		}
		n.invWorldRev = n.invWorldRev.next()
	}
	return n.invWorld
}

// InverseWorldRevision returns the revision of the cached inverse world
// transform. See WorldRevision for the freshness caveat.
func (n *Node) InverseWorldRevision() Revision {
	return n.invWorldRev
}

// --- Hierarchy ---

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetParent reparents the node. Assigning the current parent is a no-op.
// If the new parent is this node or one of its descendants the assignment
// fails with ErrCycle and no state changes. Otherwise the node is detached
// from its old parent, its caches are invalidated, and it is inserted into
// the new parent's children in handle order.
//
// Descendants are not touched: they notice the move lazily because their
// recorded parent revision stops matching once this node recomputes.
func (n *Node) SetParent(p *Node) error {
	if p == n.parent {
		return nil
	}
	if globalDebug {
		debugCheckDisposed(n, "SetParent (child)")
		if p != nil {
			debugCheckDisposed(p, "SetParent (parent)")
		}
	}
	// Walk up from the proposed parent; finding this node means the new
	// edge would close a cycle. The existing tree is already acyclic, so
	// validating the one new edge is sufficient.
	for a := p; a != nil; a = a.parent {
		if a == n {
			return ErrCycle
		}
	}
	if n.parent != nil {
		n.parent.removeChildByPtr(n)
	}
	n.parentWorldRev = RevisionStale
	n.parentInvWorldRev = RevisionStale
	n.parent = p
	if p != nil {
		p.insertChild(n)
		if globalDebug {
			debugCheckTreeDepth(n)
		}
	}
	return nil
}

// AddChild reparents child under this node. If child already has a parent
// it is detached first. Panics if child is nil or the edge would create a
// cycle; use SetParent to treat cycles as a recoverable error instead.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("canopy: cannot add nil child")
	}
	if err := child.SetParent(n); err != nil {
		panic("canopy: adding child would create a cycle")
	}
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	_ = n.SetParent(nil)
}

// Children returns the child list in ascending handle order. The returned
// slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// insertChild inserts c into n.children, keeping ascending handle order.
func (n *Node) insertChild(c *Node) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].id >= c.id
	})
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// removeChildByPtr removes child from n.children without clearing
// child.parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// --- Disposal ---

// Dispose detaches this node from its parent, releases its handle back to
// the registry, and recursively disposes all descendants. Using a node
// after disposal is undefined; debug mode traps tree operations on it.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	Release(n.id)
	n.id = NilHandle
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	n.children = nil
	n.parent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}
