package sceneedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZoomFixture(t *testing.T, populate bool) (*ZoomPan, *SceneTree) {
	t.Helper()
	doc := NewDocument(testProject)
	if populate {
		insert(t, doc, doc.Root, boxModel("a", 0, 0))
		insert(t, doc, doc.Root, boxModel("b", 300, 200))
	}
	tree := NewSceneTree(doc.Root, testAssets(t))
	z := NewZoomPan(tree)
	z.SetViewport(Rect{Width: 800, Height: 600})
	return z, tree
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	for _, populate := range []bool{true, false} {
		z, tree := newZoomFixture(t, populate)
		cursor := Vec2{250, 120}
		before := tree.ScreenToWorld(cursor)

		z.OnZoom(1, cursor.X, cursor.Y)
		assert.InDelta(t, 1.2, z.Scale(), 1e-12)
		assertVecNear(t, before, tree.ScreenToWorld(cursor))

		z.OnZoom(-1, cursor.X, cursor.Y)
		z.OnZoom(-1, cursor.X, cursor.Y)
		assertVecNear(t, before, tree.ScreenToWorld(cursor))
	}
}

func TestZoomMultipleNotches(t *testing.T) {
	z, tree := newZoomFixture(t, true)
	cursor := Vec2{250, 120}
	before := tree.ScreenToWorld(cursor)

	z.OnZoom(2, cursor.X, cursor.Y)
	assert.InDelta(t, 1.44, z.Scale(), 1e-12)
	assertVecNear(t, before, tree.ScreenToWorld(cursor))

	z.OnZoom(-3, cursor.X, cursor.Y)
	assert.InDelta(t, 1/1.2, z.Scale(), 1e-12)
	assertVecNear(t, before, tree.ScreenToWorld(cursor))
}

func TestZoomInThenOutRestoresTranslation(t *testing.T) {
	z, _ := newZoomFixture(t, true)
	z.SetState(ZoomState{Scale: 1, Translate: Vec2{37, -12}})

	z.OnZoom(1, 400, 300)
	z.OnZoom(-1, 400, 300)
	assert.InDelta(t, 1, z.Scale(), 1e-12)
	assert.InDelta(t, 37, z.Translation().X, 1e-9)
	assert.InDelta(t, -12, z.Translation().Y, 1e-9)
}

func TestZoomClamps(t *testing.T) {
	z, _ := newZoomFixture(t, true)
	for i := 0; i < 100; i++ {
		z.OnZoom(1, 0, 0)
	}
	assert.Equal(t, maxZoom, z.Scale())
	tr := z.Translation()
	z.OnZoom(1, 10, 10)
	assert.Equal(t, tr, z.Translation(), "zooming past the limit changes nothing")

	for i := 0; i < 100; i++ {
		z.OnZoom(-1, 0, 0)
	}
	assert.Equal(t, minZoom, z.Scale())

	z.SetState(ZoomState{Scale: 1000})
	assert.Equal(t, maxZoom, z.Scale())
}

func TestZoomWritesViewTransform(t *testing.T) {
	z, tree := newZoomFixture(t, false)
	var fired []ZoomState
	z.OnChange(func(s ZoomState) { fired = append(fired, s) })

	z.SetState(ZoomState{Scale: 2, Translate: Vec2{10, 20}})
	assert.Equal(t, [6]float64{2, 0, 0, 2, 10, 20}, tree.ViewTransform())
	require.Len(t, fired, 1)
	assert.Equal(t, 2.0, fired[0].Scale)
	assert.Equal(t, Vec2{30, 40}, tree.WorldToScreen(Vec2{10, 10}))

	z.OnZoom(0, 0, 0)
	assert.Len(t, fired, 1, "a zero delta is ignored")
}

func TestPan(t *testing.T) {
	z, _ := newZoomFixture(t, true)
	z.SetState(ZoomState{Scale: 2, Translate: Vec2{5, 5}})

	z.OnPanInit(Vec2{10, 10})
	assert.True(t, z.IsPanning())
	z.OnPan(Vec2{30, 50})
	assert.Equal(t, Vec2{25, 45}, z.Translation())
	z.OnPan(Vec2{0, 0})
	assert.Equal(t, Vec2{-5, -5}, z.Translation(), "pan is relative to the gesture start")
	z.OnPanDone()
	z.OnPan(Vec2{100, 100})
	assert.Equal(t, Vec2{-5, -5}, z.Translation())
	assert.Equal(t, 2.0, z.Scale())
}

func TestRevealImmediate(t *testing.T) {
	z, tree := newZoomFixture(t, true)
	z.SetState(ZoomState{Scale: 3, Translate: Vec2{-500, 80}})
	b := tree.Root().Children()[1]

	z.Reveal(b, 0, nil)
	assert.False(t, z.Revealing())
	assert.Equal(t, ZoomState{Scale: 1, Translate: Vec2{50, 50}}, z.State())
}

func TestRevealAnimated(t *testing.T) {
	z, tree := newZoomFixture(t, true)
	b := tree.Root().Children()[1]

	z.Reveal(b, 0.5, nil)
	require.True(t, z.Revealing())
	z.update(0.25)
	mid := z.Translation()
	assert.Greater(t, mid.X, 0.0)
	assert.Less(t, mid.X, 50.0)

	z.update(0.3)
	assert.False(t, z.Revealing())
	assert.InDelta(t, 50, z.Translation().X, 1e-3)
	assert.InDelta(t, 50, z.Translation().Y, 1e-3)
	assert.InDelta(t, 1, z.Scale(), 1e-6)
}

func TestRevealInterruptedByZoom(t *testing.T) {
	z, tree := newZoomFixture(t, true)
	z.Reveal(tree.Root().Children()[1], 1, nil)
	z.OnZoom(1, 0, 0)
	assert.False(t, z.Revealing())
}

func TestRevealEmptyGroupCentresOrigin(t *testing.T) {
	doc := NewDocument(testProject)
	g := insert(t, doc, doc.Root, groupModel("g", 100, 100, false))
	tree := NewSceneTree(doc.Root, nil)
	z := NewZoomPan(tree)
	z.SetViewport(Rect{Width: 800, Height: 600})

	z.Reveal(tree.Lookup(g.ID), -1, nil)
	assert.Equal(t, Vec2{300, 200}, z.Translation())
}

func TestGridLines(t *testing.T) {
	z, _ := newZoomFixture(t, false)
	z.SetViewport(Rect{Width: 100, Height: 50})

	g := z.GridLines(EditorSettings{StepWidth: 16, StepHeight: 16})
	assert.Equal(t, []float64{0, 16, 32, 48, 64, 80, 96}, g.Xs)
	assert.Equal(t, []float64{0, 16, 32, 48}, g.Ys)

	z.SetState(ZoomState{Scale: 0.25})
	g = z.GridLines(EditorSettings{StepWidth: 16, StepHeight: 16})
	require.Len(t, g.Xs, 13)
	assert.Equal(t, 8.0, g.Xs[1]-g.Xs[0], "steps double until lines are far enough apart")

	z.SetState(ZoomState{Scale: 1, Translate: Vec2{5, 0}})
	g = z.GridLines(EditorSettings{StepWidth: 16, StepHeight: 16})
	assert.Equal(t, 5.0, g.Xs[0])

	assert.Empty(t, z.GridLines(EditorSettings{}).Xs)
}
