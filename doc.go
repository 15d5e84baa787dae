// Package canopy is a lazy 2D scene-graph transform core.
//
// Canopy maintains a tree of [Node] values, each holding a local affine
// transform ([github.com/hajimehoshi/ebiten/v2.GeoM]), and exposes each
// node's world transform (the local transform composed with every
// ancestor's) and its inverse without
// recomputing the whole chain on every access. Mutation is O(1): setting a
// transform or reparenting a node touches nothing else. Reads pull: the next
// [Node.World] or [Node.InverseWorld] call freshens only the stale suffix of
// the ancestor chain, detected by revision-counter comparison rather than
// dirty-flag propagation.
//
// # Building a tree
//
//	root := canopy.NewNode("root")
//	hero := canopy.NewNode("hero")
//	if err := hero.SetParent(root); err != nil {
//		// ErrCycle: the assignment would make hero its own ancestor.
//	}
//	hero.SetTransform(canopy.Compose(100, 50, 0, 1, 1))
//
//	wx, wy := hero.LocalToWorld(0, 0)
//
// [Node.World] returns a fresh composed matrix; a second read with no
// intervening mutation is a cache hit all the way up. Reparenting a node
// invalidates nothing eagerly; descendants notice on their next read
// because their recorded parent revision no longer matches.
//
// # Handles
//
// Every node is registered in a process-wide identity registry at
// construction and addressed by an opaque [Handle]. [Lookup] and [TryLookup]
// resolve handles to live nodes; handles whose node has been disposed or
// garbage collected report not-found and are recycled for reuse. The
// registry is safe for concurrent use; the node tree itself is not and
// expects single-threaded access within an update/draw cycle.
//
// # Tweens
//
// [TweenTranslation], [TweenScale], and [TweenRotation] animate a node's
// decomposed local transform using [gween] easing:
//
//	tw := canopy.TweenTranslation(hero, 200, 0, 0.5, ease.OutQuad)
//	// each frame:
//	tw.Update(dt)
//
// [gween]: https://github.com/tanema/gween
package canopy
