package host

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/sceneedit"
)

var (
	colorBackground = color.RGBA{0x22, 0x24, 0x28, 0xff}
	colorGrid       = color.RGBA{0x33, 0x36, 0x3c, 0xff}
	colorNode       = color.RGBA{0x9a, 0xa4, 0xb0, 0xff}
	colorGroup      = color.RGBA{0x5c, 0x66, 0x72, 0xff}
	colorSelection  = color.RGBA{0x3d, 0x9c, 0xff, 0xff}
	colorBox        = color.RGBA{0x3d, 0x9c, 0xff, 0x40}
	colorHandle     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorBody       = color.RGBA{0x66, 0xd9, 0x6a, 0xff}
	colorBanner     = color.RGBA{0xa0, 0x30, 0x30, 0xe0}
	colorText       = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

const handleRadius = 5

func (g *Game) drawScene(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	ed := g.editor
	tree := ed.Tree()

	grid := ed.Zoom().GridLines(ed.Settings())
	h, w := float32(g.height), float32(g.width)
	for _, x := range grid.Xs {
		vector.StrokeLine(screen, float32(x), 0, float32(x), h, 1, colorGrid, false)
	}
	for _, y := range grid.Ys {
		vector.StrokeLine(screen, 0, float32(y), w, float32(y), 1, colorGrid, false)
	}

	tree.Walk(func(n *sceneedit.SceneNode) bool {
		if n == tree.Root() {
			return true
		}
		clr := colorNode
		if n.IsGroup() {
			clr = colorGroup
		}
		g.strokeQuad(screen, tree, n, n.ContentBounds(), clr)
		return true
	})
}

// strokeQuad outlines the local rect r of n, which may be rotated on screen.
func (g *Game) strokeQuad(dst *ebiten.Image, tree *sceneedit.SceneTree, n *sceneedit.SceneNode, r sceneedit.Rect, clr color.Color) {
	pts := [4]sceneedit.Vec2{
		tree.LocalToScreen(n, sceneedit.Vec2{X: r.X, Y: r.Y}),
		tree.LocalToScreen(n, sceneedit.Vec2{X: r.X + r.Width, Y: r.Y}),
		tree.LocalToScreen(n, sceneedit.Vec2{X: r.X + r.Width, Y: r.Y + r.Height}),
		tree.LocalToScreen(n, sceneedit.Vec2{X: r.X, Y: r.Y + r.Height}),
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, clr, true)
	}
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	ed := g.editor
	tree := ed.Tree()

	for _, b := range ed.Selection().Boxes() {
		r := b.Bounds
		vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, colorSelection, false)
	}
	if r, ok := ed.Selection().BoxRect(); ok {
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), colorBox, false)
		vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, colorSelection, false)
	}

	if ed.EditMode() == sceneedit.EditBody {
		for _, n := range ed.Selection().Nodes() {
			if n.Model().Body != nil {
				g.strokeQuad(screen, tree, n, sceneedit.BodyRect(n), colorBody)
			}
		}
	}
	for _, h := range ed.Handles().Handles() {
		drawHandle(screen, h)
	}

	g.drawText(screen, ed.Status(), 8, float64(g.height)-20)
	if g.banner != "" {
		vector.DrawFilledRect(screen, 0, 0, float32(g.width), 22, colorBanner, false)
		g.drawText(screen, g.banner, 8, 4)
	}
	if g.ShowFPS {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), g.width-100, 28)
	}
}

func drawHandle(dst *ebiten.Image, h sceneedit.EditHandler) {
	p := h.Position()
	x, y := float32(p.X), float32(p.Y)
	switch h.Shape() {
	case sceneedit.ShapeCircle:
		vector.DrawFilledCircle(dst, x, y, handleRadius, colorHandle, true)
		vector.StrokeCircle(dst, x, y, handleRadius, 1, colorSelection, true)
	case sceneedit.ShapeDiamond:
		r := float32(handleRadius)
		vector.StrokeLine(dst, x-r, y, x, y-r, 1.5, colorHandle, true)
		vector.StrokeLine(dst, x, y-r, x+r, y, 1.5, colorHandle, true)
		vector.StrokeLine(dst, x+r, y, x, y+r, 1.5, colorHandle, true)
		vector.StrokeLine(dst, x, y+r, x-r, y, 1.5, colorHandle, true)
	default:
		vector.DrawFilledRect(dst, x-handleRadius, y-handleRadius, 2*handleRadius, 2*handleRadius, colorHandle, false)
		vector.StrokeRect(dst, x-handleRadius, y-handleRadius, 2*handleRadius, 2*handleRadius, 1, colorSelection, false)
	}
}

func (g *Game) drawText(dst *ebiten.Image, s string, x, y float64) {
	if s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(colorText)
	text.Draw(dst, s, g.face, op)
}
