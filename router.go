package sceneedit

import (
	"errors"
	"math"
)

// defaultDragDeadZone is how far, in pixels, the pointer must travel from
// the press point before a press turns into a drag.
const defaultDragDeadZone = 4.0

// routerMode is the gesture the router is currently feeding.
type routerMode uint8

const (
	modeIdle routerMode = iota
	modePendingDrag
	modeDragging
	modePendingBox
	modeBoxSelect
	modePanning
	modeHandleDrag
	// modeIgnore swallows the rest of a gesture that was aborted while the
	// button is still held.
	modeIgnore
)

var routerModeNames = [...]string{"idle", "pending-drag", "dragging", "pending-box", "box-select", "panning", "handle-drag", "ignore"}

func (m routerMode) String() string {
	if int(m) < len(routerModeNames) {
		return routerModeNames[m]
	}
	return "unknown"
}

// pointerState tracks one press-move-release sequence.
type pointerState struct {
	down    bool
	button  MouseButton
	start   Vec2
	last    Vec2
	clicked bool // the press already applied its click to the selection
}

// Router dispatches raw pointer and keyboard input to exactly one engine at
// a time, chosen by the current mode.
type Router struct {
	e            *Editor
	mode         routerMode
	ps           pointerState
	dragDeadZone float64
}

func newRouter(e *Editor) *Router {
	return &Router{e: e, dragDeadZone: defaultDragDeadZone}
}

// SetDragDeadZone sets the press-to-drag threshold in pixels.
func (r *Router) SetDragDeadZone(pixels float64) {
	r.dragDeadZone = pixels
}

// Mode returns the name of the current gesture, for status displays.
func (r *Router) Mode() string { return r.mode.String() }

// ProcessPointer runs the pointer state machine for one sample: the pointer
// at screen point p, whether a button is held and which one. Hosts call it
// once per tick with the polled mouse state.
func (r *Router) ProcessPointer(p Vec2, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &r.ps
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.start = p
		ps.last = p
		ps.clicked = false
		r.e.create.SetPointer(p)
		r.press(p, button, mods)

	case !pressed && ps.down:
		r.e.create.SetPointer(p)
		// The release point is the gesture's final position.
		if p != ps.last {
			r.move(p, mods)
			ps.last = p
		}
		ps.down = false
		r.release(p, mods)

	case pressed && ps.down:
		if p != ps.last {
			r.e.create.SetPointer(p)
			r.move(p, mods)
		}
		ps.last = p

	default:
		if p != ps.last {
			r.e.create.SetPointer(p)
			ps.last = p
		}
	}
}

func (r *Router) press(p Vec2, button MouseButton, mods KeyModifiers) {
	e := r.e
	if button == MouseButtonMiddle || (button == MouseButtonLeft && mods.Alt()) {
		e.zoom.OnPanInit(p)
		r.mode = modePanning
		return
	}
	if button != MouseButtonLeft {
		r.mode = modeIgnore
		return
	}
	if e.handles.PointerDown(p) {
		r.mode = modeHandleDrag
		return
	}
	if e.selection.IsPointingToSelection(p) {
		r.mode = modePendingDrag
		return
	}
	if n := e.selection.PickBest(p); n != nil {
		e.selection.HandleClick(p, mods)
		r.ps.clicked = true
		r.mode = modePendingDrag
		return
	}
	r.mode = modePendingBox
}

func (r *Router) move(p Vec2, mods KeyModifiers) {
	e := r.e
	switch r.mode {
	case modePendingDrag:
		if !r.pastDeadZone(p) {
			return
		}
		if !e.drag.Begin(r.ps.start) {
			r.mode = modeIgnore
			return
		}
		r.mode = modeDragging
		e.drag.Update(p, mods)
	case modeDragging:
		e.drag.Update(p, mods)
	case modePendingBox:
		if !r.pastDeadZone(p) {
			return
		}
		e.selection.BeginBox(r.ps.start)
		e.selection.UpdateBox(p)
		r.mode = modeBoxSelect
	case modeBoxSelect:
		e.selection.UpdateBox(p)
	case modePanning:
		e.zoom.OnPan(p)
	case modeHandleDrag:
		e.handles.PointerDrag(p, mods)
	}
}

func (r *Router) release(p Vec2, mods KeyModifiers) {
	e := r.e
	mode := r.mode
	r.mode = modeIdle
	switch mode {
	case modePendingDrag:
		if !r.ps.clicked {
			e.selection.HandleClick(p, mods)
		}
	case modeDragging:
		e.report("Move", e.drag.End())
	case modePendingBox:
		e.selection.HandleClick(p, mods)
	case modeBoxSelect:
		e.selection.EndBox(mods)
	case modePanning:
		e.zoom.OnPanDone()
	case modeHandleDrag:
		e.report(e.handles.Mode().String(), e.handles.PointerUp())
	}
}

func (r *Router) pastDeadZone(p Vec2) bool {
	d := p.Sub(r.ps.start)
	return math.Sqrt(d.X*d.X+d.Y*d.Y) > r.dragDeadZone
}

// ProcessWheel zooms one notch around the screen point p. Positive dy
// zooms in.
func (r *Router) ProcessWheel(dy float64, p Vec2) {
	if dy == 0 {
		return
	}
	r.e.zoom.OnZoom(dy, p.X, p.Y)
}

// ProcessKey handles a key press. It reports whether the key was consumed.
func (r *Router) ProcessKey(key Key, mods KeyModifiers) bool {
	e := r.e
	if key == KeyEscape {
		if r.mode != modeIdle {
			r.Abort()
		} else {
			e.selection.Abort()
		}
		return true
	}
	if r.mode != modeIdle {
		// Commands wait until the gesture is over.
		return false
	}

	if mods.Shortcut() {
		switch key {
		case KeyC:
			e.report("Copy", e.Copy())
		case KeyX:
			e.report("Cut", e.Cut())
		case KeyV:
			e.report("Paste", e.Paste())
		case KeyG:
			e.report("Group", e.create.MakeGroup())
		case KeyA:
			e.selection.SelectAll()
		case KeyZ:
			if mods.Shift() {
				e.report("Redo", e.Redo())
			} else {
				e.report("Undo", e.Undo())
			}
		case KeyY:
			e.report("Redo", e.Redo())
		default:
			return false
		}
		return true
	}

	switch key {
	case KeyDelete, KeyBackspace:
		e.report("Delete", e.create.DeleteSelection())
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		dx, dy := nudgeDelta(key, mods, e.Settings())
		e.report("Nudge", e.create.Nudge(dx, dy))
	case KeyF:
		if sel := e.selection.Nodes(); len(sel) > 0 {
			e.zoom.Reveal(sel[0], e.opts.RevealDuration, nil)
		}
	case KeyDigit1, KeyDigit2, KeyDigit3, KeyDigit4, KeyDigit5, KeyDigit6, KeyDigit7:
		e.SetEditMode(EditMode(key-KeyDigit1) + EditMove)
	default:
		return false
	}
	return true
}

// nudgeDelta returns the world offset for an arrow key: one pixel, or one
// grid step when stepping is enabled, ten times that with Shift.
func nudgeDelta(key Key, mods KeyModifiers, s EditorSettings) (float64, float64) {
	stepX, stepY := 1.0, 1.0
	if s.SteppingEnabled {
		stepX, stepY = s.StepWidth, s.StepHeight
	}
	if mods.Shift() {
		stepX, stepY = stepX*10, stepY*10
	}
	switch key {
	case KeyLeft:
		return -stepX, 0
	case KeyRight:
		return stepX, 0
	case KeyUp:
		return 0, -stepY
	default:
		return 0, stepY
	}
}

// FocusLost aborts any gesture in progress.
func (r *Router) FocusLost() {
	r.Abort()
}

// Abort cancels the current gesture and restores what it changed. The rest
// of the gesture is ignored until the button is released.
func (r *Router) Abort() {
	e := r.e
	switch r.mode {
	case modePendingDrag, modeDragging:
		e.drag.Abort()
	case modePendingBox, modeBoxSelect:
		e.selection.CancelBox()
	case modePanning:
		e.zoom.OnPanDone()
	case modeHandleDrag:
		e.handles.Abort()
	}
	if r.ps.down {
		r.mode = modeIgnore
	} else {
		r.mode = modeIdle
	}
}

// isRejection reports whether err is a user-input rejection that has
// already been shown to the user.
func isRejection(err error) bool {
	return errors.Is(err, ErrCrossProjectDrop) ||
		errors.Is(err, ErrPasteIntoSinglePrefab) ||
		errors.Is(err, ErrPrefabStructure)
}
