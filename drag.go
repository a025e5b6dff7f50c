package sceneedit

import "fmt"

// DragInfo is the snapshot taken for one dragged node when a drag begins.
type DragInfo struct {
	Node *SceneNode

	// InitialX and InitialY are the model position at drag start, in the
	// parent's local space.
	InitialX, InitialY float64

	// InitialWorld is the node origin in world space at drag start.
	InitialWorld Vec2
}

type dragAxis uint8

const (
	axisFree dragAxis = iota
	axisX
	axisY
)

// DragEngine moves the selected nodes with the pointer. Model positions are
// written live while dragging; End turns the result into one composite.
type DragEngine struct {
	tree      *SceneTree
	selection *Selection
	bridge    ModelBridge
	settings  func() EditorSettings

	infos  []DragInfo
	start  Vec2
	active bool
	axis   dragAxis
	moved  bool
}

// NewDragEngine returns a drag engine for the selection in tree. settings is
// read on every update so snapping follows live settings changes.
func NewDragEngine(tree *SceneTree, sel *Selection, bridge ModelBridge, settings func() EditorSettings) *DragEngine {
	if settings == nil {
		settings = DefaultSettings
	}
	return &DragEngine{tree: tree, selection: sel, bridge: bridge, settings: settings}
}

// Active reports whether a drag is in progress.
func (d *DragEngine) Active() bool { return d.active }

// Infos returns the snapshots of the current drag.
func (d *DragEngine) Infos() []DragInfo { return d.infos }

// Begin snapshots every selected node at screen point p. Nodes covered by a
// selected ancestor move with it and get no snapshot of their own. It
// reports false when nothing is selected.
func (d *DragEngine) Begin(p Vec2) bool {
	d.infos = d.infos[:0]
	seen := make(map[string]bool)
	for _, n := range d.selection.Filtered() {
		if seen[n.id] {
			continue
		}
		seen[n.id] = true
		if globalDebug {
			debugCheckDisposed(n, "Begin")
		}
		d.infos = append(d.infos, DragInfo{
			Node:         n,
			InitialX:     n.model.X,
			InitialY:     n.model.Y,
			InitialWorld: d.tree.WorldPosition(n),
		})
	}
	if len(d.infos) == 0 {
		return false
	}
	d.start = p
	d.active = true
	d.axis = axisFree
	d.moved = false
	return true
}

// Update moves the dragged nodes to follow the pointer at p. Holding Shift
// latches the dominant axis of the first sample taken while it is held;
// releasing Shift frees both axes again.
func (d *DragEngine) Update(p Vec2, mods KeyModifiers) {
	if !d.active {
		return
	}
	delta := d.tree.ScreenToWorld(p).Sub(d.tree.ScreenToWorld(d.start))

	if mods.Shift() {
		if d.axis == axisFree && (delta.X != 0 || delta.Y != 0) {
			if abs(delta.X) >= abs(delta.Y) {
				d.axis = axisX
			} else {
				d.axis = axisY
			}
		}
	} else {
		d.axis = axisFree
	}
	switch d.axis {
	case axisX:
		delta.Y = 0
	case axisY:
		delta.X = 0
	}

	settings := d.settings()
	for _, info := range d.infos {
		n := info.Node
		if !d.tree.Contains(n) {
			continue
		}
		world := SnapPoint(info.InitialWorld.Add(delta), settings)
		local := d.tree.WorldToParentLocal(n, world)
		n.model.X, n.model.Y = local.X, local.Y
		n.UpdateFromModel(d.tree.resolver)
	}
	d.moved = true
	d.selection.Refresh()
}

// End finishes the drag and submits the new positions as one composite:
// a location update per moved node and a single properties-changed marker.
// Nothing is submitted when no node moved.
func (d *DragEngine) End() error {
	if !d.active {
		return nil
	}
	infos := d.infos
	d.reset()
	if !d.moved {
		return nil
	}

	c := NewComposite("Move")
	var ids []string
	for _, info := range infos {
		m := info.Node.model
		if m.X == info.InitialX && m.Y == info.InitialY {
			continue
		}
		c.Add(UpdateLocation(m.ID, m.X, m.Y, false).From(info.InitialX, info.InitialY))
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	c.Add(PropertiesChanged(ids...))
	if err := d.bridge.Submit(c); err != nil {
		d.restore(infos)
		return fmt.Errorf("sceneedit: end drag: %w", err)
	}
	return nil
}

// Abort restores every dragged node to its position at Begin. It is safe to
// call at any time, including when no drag is active.
func (d *DragEngine) Abort() {
	if !d.active {
		return
	}
	infos := d.infos
	d.reset()
	d.restore(infos)
}

func (d *DragEngine) restore(infos []DragInfo) {
	for _, info := range infos {
		m := info.Node.model
		m.X, m.Y = info.InitialX, info.InitialY
		if d.tree.Contains(info.Node) {
			info.Node.UpdateFromModel(d.tree.resolver)
		}
	}
	d.selection.Refresh()
}

func (d *DragEngine) reset() {
	d.active = false
	d.axis = axisFree
	d.infos = nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
