package sceneedit

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	zoomFactor = 1.2
	minZoom    = 0.01
	maxZoom    = 10.0

	// minGridSpacing is the smallest on-screen distance between grid lines.
	minGridSpacing = 8.0
)

// ZoomState is the view transform applied to the root: a uniform scale
// followed by a translation, both in screen units.
type ZoomState struct {
	Scale     float64
	Translate Vec2
}

// revealAnim holds the tweens of an animated Reveal.
type revealAnim struct {
	tweenX, tweenY, tweenS *gween.Tween
	doneX, doneY, doneS    bool
}

// ZoomPan owns the view transform. UpdateZoomAndPan is the only place that
// writes it to the tree; every other method computes a new state and calls it.
type ZoomPan struct {
	tree     *SceneTree
	state    ZoomState
	viewport Rect

	panning    bool
	panStart   Vec2
	panInitial Vec2
	reveal     *revealAnim
	changed    handlerRegistry[ZoomState]
}

// NewZoomPan returns an engine at scale 1 with no translation.
func NewZoomPan(tree *SceneTree) *ZoomPan {
	z := &ZoomPan{tree: tree, state: ZoomState{Scale: 1}}
	z.UpdateZoomAndPan()
	return z
}

// State returns the current view state.
func (z *ZoomPan) State() ZoomState { return z.state }

// Scale returns the current zoom scale.
func (z *ZoomPan) Scale() float64 { return z.state.Scale }

// Translation returns the current translation.
func (z *ZoomPan) Translation() Vec2 { return z.state.Translate }

// SetViewport sets the screen rectangle the scene is shown in.
func (z *ZoomPan) SetViewport(r Rect) { z.viewport = r }

// Viewport returns the screen rectangle the scene is shown in.
func (z *ZoomPan) Viewport() Rect { return z.viewport }

// OnChange registers a callback fired whenever the view transform changes.
// Overlays and the grid refresh from it.
func (z *ZoomPan) OnChange(fn func(ZoomState)) CallbackHandle {
	return z.changed.add(fn)
}

// SetState replaces the view state. The scale is clamped.
func (z *ZoomPan) SetState(s ZoomState) {
	z.reveal = nil
	s.Scale = clampZoom(s.Scale)
	z.state = s
	z.UpdateZoomAndPan()
}

// UpdateZoomAndPan writes the current state into the tree's view transform
// and notifies listeners.
func (z *ZoomPan) UpdateZoomAndPan() {
	s := z.state.Scale
	z.tree.view = [6]float64{s, 0, 0, s, z.state.Translate.X, z.state.Translate.Y}
	z.changed.fire(z.state)
}

func clampZoom(s float64) float64 {
	return math.Max(minZoom, math.Min(s, maxZoom))
}

// worldContentBounds returns the world-space bounds of everything under the root.
func (z *ZoomPan) worldContentBounds() Rect {
	var out Rect
	z.tree.Walk(func(n *SceneNode) bool {
		if !n.IsGroup() {
			out = out.Union(transformRect(z.tree.WorldTransform(n), n.ContentBounds()))
		}
		return true
	})
	return out
}

func (s ZoomState) apply(r Rect) Rect {
	return Rect{
		X:      s.Translate.X + s.Scale*r.X,
		Y:      s.Translate.Y + s.Scale*r.Y,
		Width:  s.Scale * r.Width,
		Height: s.Scale * r.Height,
	}
}

// OnZoom zooms around the screen point (x, y) by delta wheel notches: in
// for a positive delta, out for a negative one. Each notch scales by
// zoomFactor and fractional deltas scale proportionally. The scene point under the cursor
// stays under the cursor. The fraction of the root's bounds the cursor sits
// at is measured before scaling; after scaling the translation is corrected
// by the bounds delta times that fraction.
func (z *ZoomPan) OnZoom(delta, x, y float64) {
	if delta == 0 {
		return
	}
	z.reveal = nil
	old := z.state
	next := old
	next.Scale = clampZoom(old.Scale * math.Pow(zoomFactor, delta))
	if next.Scale == old.Scale {
		return
	}

	world := z.worldContentBounds()
	before := old.apply(world)
	if before.Width > 0 && before.Height > 0 {
		fx := (x - before.X) / before.Width
		fy := (y - before.Y) / before.Height
		after := next.apply(world)
		next.Translate.X -= (after.X - before.X) + (after.Width-before.Width)*fx
		next.Translate.Y -= (after.Y - before.Y) + (after.Height-before.Height)*fy
	} else {
		// Nothing to measure: keep the world point under the cursor fixed.
		wx := (x - old.Translate.X) / old.Scale
		wy := (y - old.Translate.Y) / old.Scale
		next.Translate = Vec2{x - wx*next.Scale, y - wy*next.Scale}
	}
	z.state = next
	z.UpdateZoomAndPan()
}

// OnPanInit starts a pan gesture at screen point p.
func (z *ZoomPan) OnPanInit(p Vec2) {
	z.reveal = nil
	z.panning = true
	z.panStart = p
	z.panInitial = z.state.Translate
}

// OnPan moves the view so the translation is the initial translation plus
// the pointer's displacement since OnPanInit.
func (z *ZoomPan) OnPan(p Vec2) {
	if !z.panning {
		return
	}
	z.state.Translate = z.panInitial.Add(p.Sub(z.panStart))
	z.UpdateZoomAndPan()
}

// OnPanDone ends the pan gesture.
func (z *ZoomPan) OnPanDone() {
	z.panning = false
}

// IsPanning reports whether a pan gesture is active.
func (z *ZoomPan) IsPanning() bool { return z.panning }

// Reveal centres n in the viewport at scale 1. With a positive duration the
// move is animated by update; otherwise it is applied immediately.
func (z *ZoomPan) Reveal(n *SceneNode, duration float32, easeFn ease.TweenFunc) {
	b := transformRect(z.tree.WorldTransform(n), n.ContentBounds())
	if n.IsGroup() {
		b = Rect{}
		walkFrom(n, func(c *SceneNode) bool {
			if !c.IsGroup() {
				b = b.Union(transformRect(z.tree.WorldTransform(c), c.ContentBounds()))
			}
			return true
		})
		if b.IsEmpty() {
			p := z.tree.WorldPosition(n)
			b = Rect{X: p.X, Y: p.Y}
		}
	}
	c := b.Center()
	vc := z.viewport.Center()
	target := ZoomState{Scale: 1, Translate: Vec2{vc.X - c.X, vc.Y - c.Y}}
	if duration <= 0 {
		z.SetState(target)
		return
	}
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	s := z.state
	z.reveal = &revealAnim{
		tweenX: gween.New(float32(s.Translate.X), float32(target.Translate.X), duration, easeFn),
		tweenY: gween.New(float32(s.Translate.Y), float32(target.Translate.Y), duration, easeFn),
		tweenS: gween.New(float32(s.Scale), float32(target.Scale), duration, easeFn),
	}
}

// Revealing reports whether a reveal animation is running.
func (z *ZoomPan) Revealing() bool { return z.reveal != nil }

// update advances the reveal animation. Called from Editor.Update.
func (z *ZoomPan) update(dt float32) {
	r := z.reveal
	if r == nil {
		return
	}
	if !r.doneX {
		val, done := r.tweenX.Update(dt)
		z.state.Translate.X = float64(val)
		r.doneX = done
	}
	if !r.doneY {
		val, done := r.tweenY.Update(dt)
		z.state.Translate.Y = float64(val)
		r.doneY = done
	}
	if !r.doneS {
		val, done := r.tweenS.Update(dt)
		z.state.Scale = clampZoom(float64(val))
		r.doneS = done
	}
	if r.doneX && r.doneY && r.doneS {
		z.reveal = nil
	}
	z.UpdateZoomAndPan()
}

// GridLines holds the screen positions of the visible grid lines.
type GridLines struct {
	Xs, Ys []float64
}

// GridLines returns the grid lines covering the viewport for the given
// settings. The step is doubled until lines are at least minGridSpacing
// pixels apart.
func (z *ZoomPan) GridLines(s EditorSettings) GridLines {
	var g GridLines
	if s.StepWidth <= 0 || s.StepHeight <= 0 || z.viewport.IsEmpty() {
		return g
	}
	g.Xs = gridAxis(s.StepWidth, z.state.Scale, z.state.Translate.X, z.viewport.X, z.viewport.X+z.viewport.Width)
	g.Ys = gridAxis(s.StepHeight, z.state.Scale, z.state.Translate.Y, z.viewport.Y, z.viewport.Y+z.viewport.Height)
	return g
}

func gridAxis(step, scale, translate, lo, hi float64) []float64 {
	for step*scale < minGridSpacing {
		step *= 2
	}
	first := math.Ceil((lo-translate)/scale/step) * step
	var out []float64
	for w := first; ; w += step {
		sx := translate + w*scale
		if sx > hi {
			break
		}
		out = append(out, sx)
	}
	return out
}
