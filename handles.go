package sceneedit

import (
	"fmt"
	"math"
)

const (
	// handleSize is the side of a handle's square hit area, in pixels.
	handleSize = 10.0
	// handleArm is the screen distance between a node origin and its
	// axis and rotation handles.
	handleArm = 40.0

	angleSnapStep  = 15.0
	anchorSnapStep = 0.5
	minHandleScale = 0.01
)

// HandleShape tells the host how to draw a handle.
type HandleShape uint8

const (
	ShapeSquare HandleShape = iota
	ShapeCircle
	ShapeDiamond
)

// EditHandler is one on-canvas handle bound to a node.
type EditHandler interface {
	Node() *SceneNode
	Position() Vec2
	Shape() HandleShape

	// IsValid reports whether the handle's node is still live and selected.
	IsValid() bool
	// UpdateHandler repositions the handle from its node's transform.
	UpdateHandler()
	HitTest(p Vec2) bool

	HandlePointerDown(p Vec2)
	HandlePointerDrag(p Vec2, mods KeyModifiers)
	// HandlePointerUp ends the gesture and returns the operations that
	// record it. Nil means nothing changed.
	HandlePointerUp() []StructuralOperation
	// Abort restores the node to its state at HandlePointerDown.
	Abort()
}

// handleFactory builds the handle set for one node in one edit mode.
type handleFactory func(o *HandleOverlay, n *SceneNode) []EditHandler

var handleFactories = map[EditMode]handleFactory{
	EditMove:   newMoveHandles,
	EditScale:  newScaleHandles,
	EditAngle:  newAngleHandles,
	EditAnchor: newAnchorHandles,
	EditPivot:  newPivotHandles,
	EditTile:   newTileHandles,
	EditBody:   newBodyHandles,
}

// HandleOverlay owns the handle widgets of the active edit mode. Switching
// modes always clears the previous set first.
type HandleOverlay struct {
	tree      *SceneTree
	selection *Selection
	bridge    ModelBridge
	settings  func() EditorSettings

	mode    EditMode
	handles []EditHandler
	active  EditHandler
}

// NewHandleOverlay returns an empty overlay.
func NewHandleOverlay(tree *SceneTree, sel *Selection, bridge ModelBridge, settings func() EditorSettings) *HandleOverlay {
	if settings == nil {
		settings = DefaultSettings
	}
	return &HandleOverlay{tree: tree, selection: sel, bridge: bridge, settings: settings}
}

// Mode returns the active edit mode.
func (o *HandleOverlay) Mode() EditMode { return o.mode }

// Handles returns the live handles.
func (o *HandleOverlay) Handles() []EditHandler { return o.handles }

// Dragging reports whether a handle gesture is in progress.
func (o *HandleOverlay) Dragging() bool { return o.active != nil }

// Clear aborts any handle gesture and removes every handle.
func (o *HandleOverlay) Clear() {
	o.Abort()
	o.handles = nil
	o.mode = EditNone
}

// Edit clears the overlay and creates the handles of mode for n. Panics on
// an edit mode with no handle set.
func (o *HandleOverlay) Edit(mode EditMode, n *SceneNode) {
	o.Clear()
	if mode == EditNone || n == nil {
		return
	}
	o.mode = mode
	o.add(mode, n)
}

// EditSelection clears the overlay and creates the handles of mode for
// every top-level selected node.
func (o *HandleOverlay) EditSelection(mode EditMode) {
	o.Clear()
	if mode == EditNone {
		return
	}
	o.mode = mode
	for _, n := range o.selection.Filtered() {
		o.add(mode, n)
	}
}

func (o *HandleOverlay) add(mode EditMode, n *SceneNode) {
	factory, ok := handleFactories[mode]
	if !ok {
		panic(fmt.Sprintf("sceneedit: no handles for edit mode %s", mode))
	}
	for _, h := range factory(o, n) {
		if h.IsValid() {
			h.UpdateHandler()
			o.handles = append(o.handles, h)
		}
	}
}

// Update drops handles that are no longer valid and repositions the rest.
// Called every tick.
func (o *HandleOverlay) Update() {
	kept := o.handles[:0]
	for _, h := range o.handles {
		if !h.IsValid() {
			if h == o.active {
				h.Abort()
				o.active = nil
			}
			continue
		}
		h.UpdateHandler()
		kept = append(kept, h)
	}
	for i := len(kept); i < len(o.handles); i++ {
		o.handles[i] = nil
	}
	o.handles = kept
}

// ClearNotSelected removes the handles of nodes that left the selection,
// were covered by a selected ancestor or were discarded by a rebuild.
func (o *HandleOverlay) ClearNotSelected() {
	live := make(map[*SceneNode]bool)
	for _, n := range o.selection.Filtered() {
		live[n] = true
	}
	kept := o.handles[:0]
	for _, h := range o.handles {
		if h.IsValid() && live[h.Node()] {
			kept = append(kept, h)
		} else if h == o.active {
			h.Abort()
			o.active = nil
		}
	}
	for i := len(kept); i < len(o.handles); i++ {
		o.handles[i] = nil
	}
	o.handles = kept
}

// SyncSelection brings the overlay in line with the selection. A mode
// change recreates every handle; otherwise handles of nodes still selected
// are kept as they are and only newly selected nodes get new ones.
func (o *HandleOverlay) SyncSelection(mode EditMode) {
	if mode != o.mode {
		o.EditSelection(mode)
		return
	}
	if mode == EditNone {
		return
	}
	o.ClearNotSelected()
	has := make(map[*SceneNode]bool, len(o.handles))
	for _, h := range o.handles {
		has[h.Node()] = true
	}
	for _, n := range o.selection.Filtered() {
		if !has[n] {
			o.add(mode, n)
		}
	}
}

// HitTest returns the topmost handle under p, or nil.
func (o *HandleOverlay) HitTest(p Vec2) EditHandler {
	for i := len(o.handles) - 1; i >= 0; i-- {
		if o.handles[i].HitTest(p) {
			return o.handles[i]
		}
	}
	return nil
}

// PointerDown starts a gesture on the handle under p. It reports whether a
// handle was hit.
func (o *HandleOverlay) PointerDown(p Vec2) bool {
	h := o.HitTest(p)
	if h == nil {
		return false
	}
	o.active = h
	h.HandlePointerDown(p)
	return true
}

// PointerDrag forwards a pointer move to the active handle.
func (o *HandleOverlay) PointerDrag(p Vec2, mods KeyModifiers) {
	if o.active != nil {
		o.active.HandlePointerDrag(p, mods)
	}
}

// PointerUp ends the active gesture and submits its operations.
func (o *HandleOverlay) PointerUp() error {
	h := o.active
	if h == nil {
		return nil
	}
	o.active = nil
	ops := h.HandlePointerUp()
	if len(ops) == 0 {
		return nil
	}
	if err := o.bridge.Submit(NewComposite(o.mode.String(), ops...)); err != nil {
		h.Abort()
		return fmt.Errorf("sceneedit: %s handle: %w", o.mode, err)
	}
	return nil
}

// Abort cancels the active handle gesture, restoring its node.
func (o *HandleOverlay) Abort() {
	if o.active != nil {
		o.active.Abort()
		o.active = nil
	}
}

// screenOrigin returns n's origin (its model X/Y) in screen space.
func (o *HandleOverlay) screenOrigin(n *SceneNode) Vec2 {
	return o.tree.WorldToScreen(o.tree.WorldPosition(n))
}

// pointerInParent converts a screen point to the local space of n's parent.
func (o *HandleOverlay) pointerInParent(n *SceneNode, p Vec2) Vec2 {
	return o.tree.WorldToParentLocal(n, o.tree.ScreenToWorld(p))
}

// --- handleBase ---

// handleBase carries what every handle shares: node binding by id, the
// screen position, and the property snapshot taken at pointer down.
type handleBase struct {
	overlay *HandleOverlay
	node    *SceneNode
	id      string
	pos     Vec2
	shape   HandleShape

	down     Vec2
	dragging bool
	keys     []string
	before   map[string]float64
}

func newHandleBase(o *HandleOverlay, n *SceneNode, shape HandleShape) handleBase {
	return handleBase{overlay: o, node: n, id: n.id, shape: shape}
}

func (h *handleBase) Node() *SceneNode   { return h.node }
func (h *handleBase) Position() Vec2     { return h.pos }
func (h *handleBase) Shape() HandleShape { return h.shape }

// IsValid re-resolves the node by id so handles survive a rebuild.
func (h *handleBase) IsValid() bool {
	n := h.overlay.tree.Lookup(h.id)
	if n == nil || !h.overlay.selection.Contains(n) {
		return false
	}
	h.node = n
	return true
}

func (h *handleBase) HitTest(p Vec2) bool {
	return abs(p.X-h.pos.X) <= handleSize/2 && abs(p.Y-h.pos.Y) <= handleSize/2
}

func (h *handleBase) begin(p Vec2, keys ...string) {
	h.down = p
	h.dragging = true
	h.keys = keys
	h.before = h.node.model.Properties(keys...)
}

func (h *handleBase) refresh() {
	h.node.UpdateFromModel(h.overlay.tree.resolver)
	h.overlay.selection.Refresh()
}

// HandlePointerUp records the edited properties. A pure position edit
// becomes a location update; everything else a properties update.
func (h *handleBase) HandlePointerUp() []StructuralOperation {
	if !h.dragging {
		return nil
	}
	h.dragging = false
	m := h.node.model
	after := m.Properties(h.keys...)
	changed := false
	for k, v := range after {
		if h.before[k] != v {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	if len(h.keys) == 2 && h.keys[0] == PropX && h.keys[1] == PropY {
		return []StructuralOperation{
			UpdateLocation(h.id, m.X, m.Y, false).From(h.before[PropX], h.before[PropY]),
			PropertiesChanged(h.id),
		}
	}
	return []StructuralOperation{
		SetProperties(h.id, after, h.before),
		PropertiesChanged(h.id),
	}
}

func (h *handleBase) Abort() {
	if !h.dragging {
		return
	}
	h.dragging = false
	for k, v := range h.before {
		h.node.model.SetProperty(k, v)
	}
	if h.overlay.tree.Contains(h.node) {
		h.refresh()
	}
}

// --- Move ---

type moveHandle struct {
	handleBase
	axis       dragAxis
	startWorld Vec2
}

func newMoveHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	return []EditHandler{
		&moveHandle{handleBase: newHandleBase(o, n, ShapeDiamond), axis: axisX},
		&moveHandle{handleBase: newHandleBase(o, n, ShapeDiamond), axis: axisY},
		&moveHandle{handleBase: newHandleBase(o, n, ShapeSquare), axis: axisFree},
	}
}

func (h *moveHandle) UpdateHandler() {
	origin := h.overlay.screenOrigin(h.node)
	switch h.axis {
	case axisX:
		h.pos = origin.Add(Vec2{handleArm, 0})
	case axisY:
		h.pos = origin.Add(Vec2{0, handleArm})
	default:
		h.pos = origin
	}
}

func (h *moveHandle) HandlePointerDown(p Vec2) {
	h.begin(p, PropX, PropY)
	h.startWorld = h.overlay.tree.WorldPosition(h.node)
}

func (h *moveHandle) HandlePointerDrag(p Vec2, _ KeyModifiers) {
	if !h.dragging {
		return
	}
	t := h.overlay.tree
	delta := t.ScreenToWorld(p).Sub(t.ScreenToWorld(h.down))
	switch h.axis {
	case axisX:
		delta.Y = 0
	case axisY:
		delta.X = 0
	}
	world := SnapPoint(h.startWorld.Add(delta), h.overlay.settings())
	local := t.WorldToParentLocal(h.node, world)
	h.node.model.X, h.node.model.Y = local.X, local.Y
	h.refresh()
}

// --- Scale ---

// scaleHandle sits on one of the nine compass points of the node's local
// bounds. Edge handles scale one axis, corners both, the centre uniformly.
type scaleHandle struct {
	handleBase
	dir      Vec2
	local    Vec2
	q0       Vec2
	sx0, sy0 float64
}

func newScaleHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	var out []EditHandler
	for _, dy := range []float64{-1, 0, 1} {
		for _, dx := range []float64{-1, 0, 1} {
			shape := ShapeSquare
			if dx == 0 && dy == 0 {
				shape = ShapeCircle
			}
			out = append(out, &scaleHandle{handleBase: newHandleBase(o, n, shape), dir: Vec2{dx, dy}})
		}
	}
	return out
}

func (h *scaleHandle) localPoint() Vec2 {
	b := h.overlay.tree.LocalBounds(h.node)
	return Vec2{
		X: b.X + (h.dir.X+1)/2*b.Width,
		Y: b.Y + (h.dir.Y+1)/2*b.Height,
	}
}

func (h *scaleHandle) UpdateHandler() {
	h.pos = h.overlay.tree.LocalToScreen(h.node, h.localPoint())
}

// unrotated returns the pointer relative to the node origin with the node's
// rotation removed, in parent units.
func (h *scaleHandle) unrotated(p Vec2) Vec2 {
	m := h.node.model
	d := h.overlay.pointerInParent(h.node, p).Sub(Vec2{m.X, m.Y})
	sin, cos := math.Sincos(-m.Angle * math.Pi / 180)
	return Vec2{cos*d.X - sin*d.Y, sin*d.X + cos*d.Y}
}

func (h *scaleHandle) HandlePointerDown(p Vec2) {
	h.begin(p, PropScaleX, PropScaleY)
	h.local = h.localPoint()
	h.q0 = h.unrotated(p)
	h.sx0, h.sy0 = h.node.model.ScaleX, h.node.model.ScaleY
}

func (h *scaleHandle) HandlePointerDrag(p Vec2, mods KeyModifiers) {
	if !h.dragging {
		return
	}
	m := h.node.model
	q := h.unrotated(p)
	sx, sy := h.sx0, h.sy0
	if h.dir.X == 0 && h.dir.Y == 0 {
		if r0 := h.q0.Len(); r0 > 0 {
			f := q.Len() / r0
			sx, sy = h.sx0*f, h.sy0*f
		}
	} else {
		if lx := h.local.X - m.PivotX; h.dir.X != 0 && lx != 0 {
			sx = q.X / lx
		}
		if ly := h.local.Y - m.PivotY; h.dir.Y != 0 && ly != 0 {
			sy = q.Y / ly
		}
		if mods.Shift() && h.dir.X != 0 && h.dir.Y != 0 && h.sx0 != 0 && h.sy0 != 0 {
			f := (sx/h.sx0 + sy/h.sy0) / 2
			sx, sy = h.sx0*f, h.sy0*f
		}
	}
	m.ScaleX = limitScale(sx)
	m.ScaleY = limitScale(sy)
	h.refresh()
}

func limitScale(s float64) float64 {
	if abs(s) >= minHandleScale {
		return s
	}
	if s < 0 {
		return -minHandleScale
	}
	return minHandleScale
}

// --- Angle ---

type angleHandle struct {
	handleBase
	pointer0 float64
	angle0   float64
}

func newAngleHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	return []EditHandler{&angleHandle{handleBase: newHandleBase(o, n, ShapeCircle)}}
}

func (h *angleHandle) UpdateHandler() {
	st := h.overlay.tree.ScreenTransform(h.node)
	dir := math.Atan2(st[1], st[0])
	h.pos = h.overlay.screenOrigin(h.node).Add(Vec2{math.Cos(dir) * handleArm, math.Sin(dir) * handleArm})
}

func (h *angleHandle) pointerAngle(p Vec2) float64 {
	d := p.Sub(h.overlay.screenOrigin(h.node))
	return math.Atan2(d.Y, d.X) * 180 / math.Pi
}

func (h *angleHandle) HandlePointerDown(p Vec2) {
	h.begin(p, PropAngle)
	h.pointer0 = h.pointerAngle(p)
	h.angle0 = h.node.model.Angle
}

func (h *angleHandle) HandlePointerDrag(p Vec2, mods KeyModifiers) {
	if !h.dragging {
		return
	}
	a := h.angle0 + h.pointerAngle(p) - h.pointer0
	if mods.Shift() {
		a = Snap(a, angleSnapStep)
	}
	h.node.model.Angle = normalizeAngle(a)
	h.refresh()
}

// normalizeAngle maps degrees into (-180, 180].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// --- Anchor and pivot ---

// originHandle moves the anchor or pivot of a node and shifts its position
// so the content stays where it is on screen.
type originHandle struct {
	handleBase
	pivot    bool
	local0   [6]float64
	inverse0 [6]float64
	size     Vec2
	value0   Vec2
	x0, y0   float64
}

func newAnchorHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	if n.IsGroup() {
		return nil
	}
	return []EditHandler{&originHandle{handleBase: newHandleBase(o, n, ShapeCircle)}}
}

func newPivotHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	return []EditHandler{&originHandle{handleBase: newHandleBase(o, n, ShapeDiamond), pivot: true}}
}

func (h *originHandle) UpdateHandler() {
	m := h.node.model
	if h.pivot {
		h.pos = h.overlay.tree.LocalToScreen(h.node, Vec2{m.PivotX, m.PivotY})
		return
	}
	h.pos = h.overlay.tree.LocalToScreen(h.node, Vec2{})
}

func (h *originHandle) HandlePointerDown(p Vec2) {
	m := h.node.model
	if h.pivot {
		h.begin(p, PropPivotX, PropPivotY, PropX, PropY)
		h.value0 = Vec2{m.PivotX, m.PivotY}
	} else {
		h.begin(p, PropAnchorX, PropAnchorY, PropX, PropY)
		h.value0 = Vec2{m.AnchorX, m.AnchorY}
	}
	h.local0 = h.node.local
	h.inverse0 = invertAffine(h.overlay.tree.ScreenTransform(h.node))
	h.size = h.node.size
	h.x0, h.y0 = m.X, m.Y
}

func (h *originHandle) HandlePointerDrag(p Vec2, mods KeyModifiers) {
	if !h.dragging {
		return
	}
	m := h.node.model
	lp := applyPoint(h.inverse0, p)
	var shift Vec2
	if h.pivot {
		next := lp
		if mods.Shift() {
			next = Vec2{math.Round(next.X), math.Round(next.Y)}
		}
		m.PivotX, m.PivotY = next.X, next.Y
		shift = next.Sub(h.value0)
	} else {
		if h.size.X == 0 || h.size.Y == 0 {
			return
		}
		next := Vec2{h.value0.X + lp.X/h.size.X, h.value0.Y + lp.Y/h.size.Y}
		if mods.Shift() {
			next = Vec2{Snap(next.X, anchorSnapStep), Snap(next.Y, anchorSnapStep)}
		}
		m.AnchorX, m.AnchorY = next.X, next.Y
		shift = Vec2{(next.X - h.value0.X) * h.size.X, (next.Y - h.value0.Y) * h.size.Y}
	}
	dx, dy := transformVector(h.local0, shift.X, shift.Y)
	m.X, m.Y = h.x0+dx, h.y0+dy
	h.refresh()
}

// --- Tile sprite ---

// tileHandle drags the texture offset of a tile sprite, or resizes it.
type tileHandle struct {
	handleBase
	resize   bool
	inverse0 [6]float64
	value0   Vec2
}

func newTileHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	if n.model.Kind != KindTileSprite {
		return nil
	}
	return []EditHandler{
		&tileHandle{handleBase: newHandleBase(o, n, ShapeCircle)},
		&tileHandle{handleBase: newHandleBase(o, n, ShapeSquare), resize: true},
	}
}

func (h *tileHandle) UpdateHandler() {
	b := h.node.ContentBounds()
	if h.resize {
		h.pos = h.overlay.tree.LocalToScreen(h.node, Vec2{b.X + b.Width, b.Y + b.Height})
		return
	}
	h.pos = h.overlay.tree.LocalToScreen(h.node, b.Center())
}

func (h *tileHandle) HandlePointerDown(p Vec2) {
	m := h.node.model
	if h.resize {
		h.begin(p, PropWidth, PropHeight)
		h.value0 = h.node.size
	} else {
		h.begin(p, PropTileX, PropTileY)
		h.value0 = Vec2{m.TileX, m.TileY}
	}
	h.inverse0 = invertAffine(h.overlay.tree.ScreenTransform(h.node))
}

func (h *tileHandle) HandlePointerDrag(p Vec2, _ KeyModifiers) {
	if !h.dragging {
		return
	}
	m := h.node.model
	delta := applyPoint(h.inverse0, p).Sub(applyPoint(h.inverse0, h.down))
	if h.resize {
		s := h.overlay.settings()
		w, ht := h.value0.X+delta.X, h.value0.Y+delta.Y
		if s.SteppingEnabled {
			w, ht = Snap(w, s.StepWidth), Snap(ht, s.StepHeight)
		}
		m.Width, m.Height = math.Max(1, w), math.Max(1, ht)
	} else {
		m.TileX, m.TileY = h.value0.X-delta.X, h.value0.Y-delta.Y
	}
	h.refresh()
}

// --- Physics body ---

// bodyHandle moves or resizes a node's physics body rectangle, expressed
// relative to the top-left of its content.
type bodyHandle struct {
	handleBase
	resize   bool
	inverse0 [6]float64
	value0   Vec2
}

func newBodyHandles(o *HandleOverlay, n *SceneNode) []EditHandler {
	if n.model.Body == nil || n.IsGroup() {
		return nil
	}
	return []EditHandler{
		&bodyHandle{handleBase: newHandleBase(o, n, ShapeCircle)},
		&bodyHandle{handleBase: newHandleBase(o, n, ShapeSquare), resize: true},
	}
}

// BodyRect returns the physics body of n in n's local space. A body with no
// explicit size covers the whole content.
func BodyRect(n *SceneNode) Rect {
	b := n.model.Body
	c := n.ContentBounds()
	if b == nil {
		return Rect{}
	}
	w, h := b.Width, b.Height
	if w <= 0 || h <= 0 {
		w, h = c.Width, c.Height
	}
	return Rect{X: c.X + b.OffsetX, Y: c.Y + b.OffsetY, Width: w, Height: h}
}

func (h *bodyHandle) UpdateHandler() {
	r := BodyRect(h.node)
	if h.resize {
		h.pos = h.overlay.tree.LocalToScreen(h.node, Vec2{r.X + r.Width, r.Y + r.Height})
		return
	}
	h.pos = h.overlay.tree.LocalToScreen(h.node, r.Center())
}

func (h *bodyHandle) IsValid() bool {
	return h.handleBase.IsValid() && h.node.model.Body != nil
}

func (h *bodyHandle) HandlePointerDown(p Vec2) {
	b := h.node.model.Body
	if h.resize {
		h.begin(p, PropBodyWidth, PropBodyHeight)
		r := BodyRect(h.node)
		h.value0 = Vec2{r.Width, r.Height}
	} else {
		h.begin(p, PropBodyOffsetX, PropBodyOffsetY)
		h.value0 = Vec2{b.OffsetX, b.OffsetY}
	}
	h.inverse0 = invertAffine(h.overlay.tree.ScreenTransform(h.node))
}

func (h *bodyHandle) HandlePointerDrag(p Vec2, _ KeyModifiers) {
	if !h.dragging {
		return
	}
	b := h.node.model.Body
	delta := applyPoint(h.inverse0, p).Sub(applyPoint(h.inverse0, h.down))
	if h.resize {
		b.Width = math.Max(1, math.Round(h.value0.X+delta.X))
		b.Height = math.Max(1, math.Round(h.value0.Y+delta.Y))
	} else {
		b.OffsetX = math.Round(h.value0.X + delta.X)
		b.OffsetY = math.Round(h.value0.Y + delta.Y)
	}
	h.refresh()
}
