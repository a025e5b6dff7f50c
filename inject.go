package sceneedit

type syntheticKind uint8

const (
	synthPointer syntheticKind = iota
	synthWheel
	synthKey
	synthFocusLost
)

// syntheticEvent is one queued input event. Pointer coordinates are in
// screen space, exactly like polled mouse input.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	pressed bool
	button  MouseButton
	mods    KeyModifiers
	delta   float64
	key     Key
}

func (e *Editor) inject(evt syntheticEvent) {
	evt.mods = e.injectMods
	e.injectQueue = append(e.injectQueue, evt)
}

// InjectPress queues a left-button press at the given screen coordinates.
// Events are consumed one per Update, with the modifiers set by
// SetInjectModifiers at the time they were queued.
func (e *Editor) InjectPress(x, y float64) {
	e.inject(syntheticEvent{kind: synthPointer, x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectMiddlePress queues a middle-button press, which starts a pan.
func (e *Editor) InjectMiddlePress(x, y float64) {
	e.inject(syntheticEvent{kind: synthPointer, x: x, y: y, pressed: true, button: MouseButtonMiddle})
}

// InjectMove queues a pointer move with the button held down. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (e *Editor) InjectMove(x, y float64) {
	e.inject(syntheticEvent{kind: synthPointer, x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (e *Editor) InjectRelease(x, y float64) {
	e.inject(syntheticEvent{kind: synthPointer, x: x, y: y, button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two ticks.
func (e *Editor) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a full drag: a press at (fromX, fromY), moves
// interpolated over frames-2 ticks, and a release at (toX, toY). Minimum
// frames is 2.
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	e.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel notch at the given screen coordinates.
func (e *Editor) InjectWheel(x, y, dy float64) {
	e.inject(syntheticEvent{kind: synthWheel, x: x, y: y, delta: dy})
}

// InjectKey queues a key press.
func (e *Editor) InjectKey(key Key) {
	e.inject(syntheticEvent{kind: synthKey, key: key})
}

// InjectFocusLost queues a loss of window focus.
func (e *Editor) InjectFocusLost() {
	e.inject(syntheticEvent{kind: synthFocusLost})
}

// PendingInjections returns the number of queued synthetic events.
func (e *Editor) PendingInjections() int { return len(e.injectQueue) }

// processInjectedInput pops one event and feeds it to the router. It
// reports whether an event was consumed, in which case the host skips real
// input for the tick.
func (e *Editor) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	p := Vec2{evt.x, evt.y}
	switch evt.kind {
	case synthPointer:
		e.router.ProcessPointer(p, evt.pressed, evt.button, evt.mods)
	case synthWheel:
		e.router.ProcessWheel(evt.delta, p)
	case synthKey:
		e.router.ProcessKey(evt.key, evt.mods)
	case synthFocusLost:
		e.router.FocusLost()
	}
	return true
}
