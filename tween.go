package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 components of a Node's decomposed local
// transform simultaneously. Create one via the convenience constructors
// (TweenTranslation, TweenScale, TweenRotation) and call Update(dt) each
// frame. The group recomposes the transform and applies it through
// SetTransform. If the target node is disposed, the group stops
// immediately.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool

	// Decomposed local transform captured at construction; fields point
	// into these.
	tx, ty, rotation, scaleX, scaleY float64
}

func newTweenGroup(target *Node) *TweenGroup {
	g := &TweenGroup{target: target}
	g.tx, g.ty, g.rotation, g.scaleX, g.scaleY = Decompose(target.Transform())
	return g
}

// Update advances all tweens by dt seconds, recomposes the local transform,
// and writes it to the target node. If the target node has been disposed,
// Done is set to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.SetTransform(Compose(g.tx, g.ty, g.rotation, g.scaleX, g.scaleY))
	}
}

// TweenTranslation creates a TweenGroup that animates the node's local
// translation to the given coordinates over the specified duration using
// the easing function.
func TweenTranslation(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.count = 2
	g.tweens[0] = gween.New(float32(g.tx), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(g.ty), float32(toY), duration, fn)
	g.fields[0] = &g.tx
	g.fields[1] = &g.ty
	return g
}

// TweenScale creates a TweenGroup that animates the node's local scale to
// the given values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.count = 2
	g.tweens[0] = gween.New(float32(g.scaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(g.scaleY), float32(toSY), duration, fn)
	g.fields[0] = &g.scaleX
	g.fields[1] = &g.scaleY
	return g
}

// TweenRotation creates a TweenGroup that animates the node's local
// rotation (in radians) to the target value over the specified duration
// using the easing function.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.count = 1
	g.tweens[0] = gween.New(float32(g.rotation), float32(to), duration, fn)
	g.fields[0] = &g.rotation
	return g
}
