// Package host runs a sceneedit.Editor inside an Ebitengine window: it polls
// the mouse and keyboard into the editor's router once per tick and draws
// the scene as outlines with the selection, handles and grid on top.
package host

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/sceneedit"
)

// bannerDuration is how long an error banner stays on screen.
const bannerDuration = 4 * time.Second

// Game implements ebiten.Game for an editor.
type Game struct {
	editor *sceneedit.Editor
	width  int
	height int

	face    *text.GoXFace
	focused bool
	hooks   []func()

	banner      string
	bannerUntil time.Time

	// ShowFPS draws the measured FPS and TPS in the corner.
	ShowFPS bool
	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string
	shots         []string
}

// New wraps ed in a Game with the given window size and makes the game the
// editor's messenger.
func New(ed *sceneedit.Editor, width, height int) *Game {
	g := &Game{
		editor:        ed,
		width:         width,
		height:        height,
		face:          text.NewGoXFace(basicfont.Face7x13),
		focused:       true,
		ScreenshotDir: "screenshots",
	}
	ed.SetMessenger(g)
	ed.SetViewport(sceneedit.Rect{Width: float64(width), Height: float64(height)})
	return g
}

// Editor returns the wrapped editor.
func (g *Game) Editor() *sceneedit.Editor { return g.editor }

// AddTickHook registers fn to run at the start of every Update, on the UI
// goroutine. Use it to drain channels fed by other goroutines.
func (g *Game) AddTickHook(fn func()) {
	g.hooks = append(g.hooks, fn)
}

// ShowError implements sceneedit.Messenger with a banner at the top of the
// window.
func (g *Game) ShowError(title, message string) {
	slog.Warn("host: error shown", "title", title, "message", message)
	g.banner = title + ": " + message
	g.bannerUntil = time.Now().Add(bannerDuration)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	for _, fn := range g.hooks {
		fn()
	}
	g.editor.Update(dt)
	if !g.editor.InjectedInputThisTick() {
		g.pollInput()
	}
	if g.banner != "" && time.Now().After(g.bannerUntil) {
		g.banner = ""
	}
	return nil
}

// Layout implements ebiten.Game. The canvas always fills the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.editor.SetViewport(sceneedit.Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)})
	}
	return outsideWidth, outsideHeight
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.drawScene(screen)
	g.drawOverlay(screen)
	g.flushScreenshots(screen)
}

// RunConfig configures Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// Hooks run at the start of every tick, before the editor updates.
	Hooks []func()
}

// Run opens a resizable window and runs the editor until it is closed.
func Run(ed *sceneedit.Editor, cfg RunConfig) error {
	g := New(ed, cfg.Width, cfg.Height)
	g.ShowFPS = cfg.ShowFPS
	for _, fn := range cfg.Hooks {
		g.AddTickHook(fn)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
