package canopy

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Compose builds a local affine matrix from translation, rotation (in
// radians), and scale, applied scale-first:
//
//	Scale -> Rotate -> Translate(tx, ty)
func Compose(tx, ty, rotation, scaleX, scaleY float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(scaleX, scaleY)
	m.Rotate(rotation)
	m.Translate(tx, ty)
	return m
}

// Decompose extracts translation, rotation, and scale from an affine matrix
// built by Compose. A negative determinant (one mirrored axis) is attributed
// to scaleY so that Compose round-trips it. Matrices with skew decompose
// approximately: the skew component folds into rotation and scale.
func Decompose(m ebiten.GeoM) (tx, ty, rotation, scaleX, scaleY float64) {
	a := m.Element(0, 0)
	b := m.Element(1, 0)
	c := m.Element(0, 1)
	d := m.Element(1, 1)
	tx = m.Element(0, 2)
	ty = m.Element(1, 2)
	rotation = math.Atan2(b, a)
	scaleX = math.Hypot(a, b)
	scaleY = math.Hypot(c, d)
	if a*d-b*c < 0 {
		scaleY = -scaleY
	}
	return
}

// LocalToWorld converts a point in this node's local space to root space,
// freshening the world transform if needed.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	w := n.World()
	return w.Apply(lx, ly)
}

// WorldToLocal converts a root-space point to this node's local space,
// freshening the inverse world transform if needed.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := n.InverseWorld()
	return inv.Apply(wx, wy)
}
