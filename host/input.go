package host

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/sceneedit"
)

// keyBindings maps the keys the router understands to Ebitengine keys.
var keyBindings = []struct {
	key    ebiten.Key
	editor sceneedit.Key
}{
	{ebiten.KeyEscape, sceneedit.KeyEscape},
	{ebiten.KeyDelete, sceneedit.KeyDelete},
	{ebiten.KeyBackspace, sceneedit.KeyBackspace},
	{ebiten.KeyArrowLeft, sceneedit.KeyLeft},
	{ebiten.KeyArrowRight, sceneedit.KeyRight},
	{ebiten.KeyArrowUp, sceneedit.KeyUp},
	{ebiten.KeyArrowDown, sceneedit.KeyDown},
	{ebiten.KeyA, sceneedit.KeyA},
	{ebiten.KeyC, sceneedit.KeyC},
	{ebiten.KeyG, sceneedit.KeyG},
	{ebiten.KeyV, sceneedit.KeyV},
	{ebiten.KeyX, sceneedit.KeyX},
	{ebiten.KeyY, sceneedit.KeyY},
	{ebiten.KeyZ, sceneedit.KeyZ},
	{ebiten.KeyF, sceneedit.KeyF},
	{ebiten.KeyDigit1, sceneedit.KeyDigit1},
	{ebiten.KeyDigit2, sceneedit.KeyDigit2},
	{ebiten.KeyDigit3, sceneedit.KeyDigit3},
	{ebiten.KeyDigit4, sceneedit.KeyDigit4},
	{ebiten.KeyDigit5, sceneedit.KeyDigit5},
	{ebiten.KeyDigit6, sceneedit.KeyDigit6},
	{ebiten.KeyDigit7, sceneedit.KeyDigit7},
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() sceneedit.KeyModifiers {
	var mods sceneedit.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= sceneedit.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= sceneedit.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= sceneedit.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= sceneedit.ModMeta
	}
	return mods
}

// pollInput feeds one tick of real input into the router.
func (g *Game) pollInput() {
	r := g.editor.Router()
	mods := readModifiers()

	focused := ebiten.IsFocused()
	if g.focused && !focused {
		r.FocusLost()
	}
	g.focused = focused
	if !focused {
		return
	}

	mx, my := ebiten.CursorPosition()
	p := sceneedit.Vec2{X: float64(mx), Y: float64(my)}

	// Keep the button of the press for the whole gesture.
	var pressed bool
	var button sceneedit.MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = sceneedit.MouseButtonLeft
		case right:
			button = sceneedit.MouseButtonRight
		default:
			button = sceneedit.MouseButtonMiddle
		}
	}
	r.ProcessPointer(p, pressed, button, mods)

	if _, wy := ebiten.Wheel(); wy != 0 {
		r.ProcessWheel(wy, p)
	}

	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			r.ProcessKey(b.editor, mods)
		}
	}
}
