package sceneedit

import "math"

// transformRect returns the axis-aligned bounding box of r after applying m.
// Zero allocations.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// MergeBounds returns the union of all non-empty rectangles.
func MergeBounds(rects ...Rect) Rect {
	var out Rect
	for _, r := range rects {
		out = out.Union(r)
	}
	return out
}

// Snap rounds v to the nearest multiple of step. A non-positive step leaves
// v unchanged.
func Snap(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// SnapPoint snaps both coordinates of p to the grid described by s. It is a
// no-op when stepping is disabled.
func SnapPoint(p Vec2, s EditorSettings) Vec2 {
	if !s.SteppingEnabled {
		return p
	}
	return Vec2{Snap(p.X, s.StepWidth), Snap(p.Y, s.StepHeight)}
}

// ContentScreenBounds returns the screen-space bounds of n's own content.
// Empty for groups.
func (t *SceneTree) ContentScreenBounds(n *SceneNode) Rect {
	if n.IsGroup() {
		return Rect{}
	}
	return transformRect(t.ScreenTransform(n), n.ContentBounds())
}

// NodeScreenBounds returns the screen-space bounds of n including every
// descendant's content.
func (t *SceneTree) NodeScreenBounds(n *SceneNode) Rect {
	var out Rect
	walkFrom(n, func(c *SceneNode) bool {
		out = out.Union(t.ContentScreenBounds(c))
		return true
	})
	return out
}

// SelectionBounds returns the rectangle drawn around n when it is selected.
// A group contributes its children's bounds plus a 1x1 corner at its own
// origin, so even an empty group shows a box.
func (t *SceneTree) SelectionBounds(n *SceneNode) Rect {
	if !n.IsGroup() {
		return t.ContentScreenBounds(n)
	}
	origin := t.LocalToScreen(n, Vec2{})
	out := Rect{X: origin.X, Y: origin.Y, Width: 1, Height: 1}
	for _, c := range n.children {
		out = out.Union(t.NodeScreenBounds(c))
	}
	return out
}

// containsScreenPoint reports whether the screen point hits n. Leaves test
// their content rectangle in local space; groups test every descendant.
func (t *SceneTree) containsScreenPoint(n *SceneNode, p Vec2) bool {
	if !n.IsGroup() {
		lp := t.ScreenToLocal(n, p)
		r := n.ContentBounds()
		return !r.IsEmpty() && r.Contains(lp.X, lp.Y)
	}
	hit := false
	walkFrom(n, func(c *SceneNode) bool {
		if hit {
			return false
		}
		if c != n && !c.IsGroup() {
			lp := t.ScreenToLocal(c, p)
			r := c.ContentBounds()
			hit = !r.IsEmpty() && r.Contains(lp.X, lp.Y)
		}
		return !hit
	})
	return hit
}

// LocalBounds returns the bounds of n in its own local space. For a group
// this is the union of its descendants' content; an empty group yields a
// 1x1 rectangle at its origin.
func (t *SceneTree) LocalBounds(n *SceneNode) Rect {
	if !n.IsGroup() {
		return n.ContentBounds()
	}
	var out Rect
	walkFrom(n, func(c *SceneNode) bool {
		if c != n && !c.IsGroup() {
			out = out.Union(transformRect(t.ancestorTransform(c, n), c.ContentBounds()))
		}
		return true
	})
	if out.IsEmpty() {
		return Rect{Width: 1, Height: 1}
	}
	return out
}
