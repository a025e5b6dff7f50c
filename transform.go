package sceneedit

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the model's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(m *ObjectModel) [6]float64 {
	sx, sy := m.ScaleX, m.ScaleY
	sin, cos := math.Sincos(m.Angle * math.Pi / 180)

	// After Scale * Translate(-pivot): a=sx, d=sy, tx=-px*sx, ty=-py*sy
	preTx := -m.PivotX * sx
	preTy := -m.PivotY * sy

	return [6]float64{
		cos * sx, sin * sx,
		-sin * sy, cos * sy,
		cos*preTx - sin*preTy + m.X,
		sin*preTx + cos*preTy + m.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformVector applies only the linear part of an affine matrix.
func transformVector(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y, m[1]*x + m[3]*y
}

func applyPoint(m [6]float64, p Vec2) Vec2 {
	x, y := transformPoint(m, p.X, p.Y)
	return Vec2{x, y}
}

// --- Tree-level transforms ---
//
// Three spaces are involved: a node's local space, world space (the space the
// root group lives in, unaffected by zoom and pan) and screen space (world
// space after the view transform written by the zoom/pan engine).

// WorldTransform returns the matrix mapping n's local space to world space.
func (t *SceneTree) WorldTransform(n *SceneNode) [6]float64 {
	m := n.local
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		m = multiplyAffine(p.local, m)
	}
	return m
}

// ScreenTransform returns the matrix mapping n's local space to screen space.
func (t *SceneTree) ScreenTransform(n *SceneNode) [6]float64 {
	return multiplyAffine(t.view, t.WorldTransform(n))
}

// ViewTransform returns the current world-to-screen matrix.
func (t *SceneTree) ViewTransform() [6]float64 { return t.view }

// LocalToWorld converts a point in n's local space to world space.
func (t *SceneTree) LocalToWorld(n *SceneNode, p Vec2) Vec2 {
	return applyPoint(t.WorldTransform(n), p)
}

// WorldToLocal converts a world-space point to n's local space.
func (t *SceneTree) WorldToLocal(n *SceneNode, p Vec2) Vec2 {
	return applyPoint(invertAffine(t.WorldTransform(n)), p)
}

// LocalToScreen converts a point in n's local space to screen space.
func (t *SceneTree) LocalToScreen(n *SceneNode, p Vec2) Vec2 {
	return applyPoint(t.ScreenTransform(n), p)
}

// ScreenToLocal converts a screen-space point to n's local space.
func (t *SceneTree) ScreenToLocal(n *SceneNode, p Vec2) Vec2 {
	return applyPoint(invertAffine(t.ScreenTransform(n)), p)
}

// ScreenToWorld converts a screen-space point to world space.
func (t *SceneTree) ScreenToWorld(p Vec2) Vec2 {
	return applyPoint(invertAffine(t.view), p)
}

// WorldToScreen converts a world-space point to screen space.
func (t *SceneTree) WorldToScreen(p Vec2) Vec2 {
	return applyPoint(t.view, p)
}

// LocalToAncestor converts a point in n's local space into the local space
// of ancestor. Passing nil as ancestor converts to world space.
func (t *SceneTree) LocalToAncestor(n, ancestor *SceneNode, p Vec2) Vec2 {
	return applyPoint(t.ancestorTransform(n, ancestor), p)
}

// AncestorToLocal is the inverse of LocalToAncestor.
func (t *SceneTree) AncestorToLocal(n, ancestor *SceneNode, p Vec2) Vec2 {
	return applyPoint(invertAffine(t.ancestorTransform(n, ancestor)), p)
}

// ancestorTransform returns the matrix mapping n's local space into the
// local space of ancestor, or into world space when ancestor is nil.
func (t *SceneTree) ancestorTransform(n, ancestor *SceneNode) [6]float64 {
	if n == ancestor {
		return identityTransform
	}
	m := n.local
	for cur := t.Parent(n); cur != nil && cur != ancestor; cur = t.Parent(cur) {
		m = multiplyAffine(cur.local, m)
	}
	return m
}

// ParentWorldTransform returns the matrix mapping the local space of n's
// parent to world space. For the root this is the identity.
func (t *SceneTree) ParentWorldTransform(n *SceneNode) [6]float64 {
	if p := t.Parent(n); p != nil {
		return t.WorldTransform(p)
	}
	return identityTransform
}

// WorldPosition returns the world-space position of n's origin (its model
// X/Y as seen from world space).
func (t *SceneTree) WorldPosition(n *SceneNode) Vec2 {
	return applyPoint(t.ParentWorldTransform(n), Vec2{n.model.X, n.model.Y})
}

// WorldToParentLocal converts a world-space point into the local space of
// n's parent, the space n's model X/Y are expressed in.
func (t *SceneTree) WorldToParentLocal(n *SceneNode, p Vec2) Vec2 {
	return applyPoint(invertAffine(t.ParentWorldTransform(n)), p)
}
