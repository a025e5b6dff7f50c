package sceneedit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func assertVecNear(t *testing.T, want, got Vec2) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}

func TestComputeLocalTransformIdentity(t *testing.T) {
	m := NewObjectModel(KindSprite, "s")
	assert.Equal(t, identityTransform, computeLocalTransform(m))
}

func TestComputeLocalTransformOrder(t *testing.T) {
	m := NewObjectModel(KindSprite, "s")
	m.X, m.Y = 100, 50
	m.ScaleX, m.ScaleY = 2, 2
	m.Angle = 90
	m.PivotX, m.PivotY = 10, 0

	x, y := transformPoint(computeLocalTransform(m), 10, 0)
	assert.InDelta(t, 100, x, epsilon, "the pivot lands on the position")
	assert.InDelta(t, 50, y, epsilon)

	x, y = transformPoint(computeLocalTransform(m), 11, 0)
	assert.InDelta(t, 100, x, epsilon, "+x rotates onto +y")
	assert.InDelta(t, 52, y, epsilon)
}

func TestInvertAffine(t *testing.T) {
	m := NewObjectModel(KindSprite, "s")
	m.X, m.Y, m.ScaleX, m.ScaleY, m.Angle = 3, 4, 2, 0.5, 33
	mat := computeLocalTransform(m)
	got := multiplyAffine(mat, invertAffine(mat))
	for i, v := range identityTransform {
		assert.InDelta(t, v, got[i], epsilon)
	}
	assert.Equal(t, identityTransform, invertAffine([6]float64{0, 0, 0, 0, 5, 5}))
}

func transformFixture(t *testing.T) (*SceneTree, *SceneNode, *SceneNode) {
	t.Helper()
	doc := NewDocument(testProject)
	g := groupModel("g", 100, 100, false)
	g.Angle = 30
	g.ScaleX, g.ScaleY = 2, 1.5
	insert(t, doc, doc.Root, g)
	s := boxModel("s", 10, 20)
	s.Angle = -45
	s.PivotX, s.PivotY = 5, 5
	insert(t, doc, g, s)
	tree := NewSceneTree(doc.Root, testAssets(t))
	tree.view = [6]float64{1.5, 0, 0, 1.5, 40, -20}
	return tree, tree.Lookup(g.ID), tree.Lookup(s.ID)
}

func TestSpaceConversionRoundTrips(t *testing.T) {
	tree, g, s := transformFixture(t)
	p := Vec2{12.5, -7}

	assertVecNear(t, p, tree.WorldToLocal(s, tree.LocalToWorld(s, p)))
	assertVecNear(t, p, tree.ScreenToLocal(s, tree.LocalToScreen(s, p)))
	assertVecNear(t, p, tree.ScreenToWorld(tree.WorldToScreen(p)))
	assertVecNear(t, p, tree.AncestorToLocal(s, g, tree.LocalToAncestor(s, g, p)))

	// LocalToAncestor(nil) is world space.
	assertVecNear(t, tree.LocalToWorld(s, p), tree.LocalToAncestor(s, nil, p))
	// Going through the parent is the same as going straight to world.
	assertVecNear(t, tree.LocalToWorld(s, p), tree.LocalToWorld(g, tree.LocalToAncestor(s, g, p)))
}

func TestWorldPositionAndParentLocal(t *testing.T) {
	tree, g, s := transformFixture(t)
	assertVecNear(t, Vec2{100, 100}, tree.WorldPosition(g))

	wp := tree.WorldPosition(s)
	assertVecNear(t, tree.LocalToWorld(g, Vec2{10, 20}), wp)
	assertVecNear(t, Vec2{10, 20}, tree.WorldToParentLocal(s, wp))
}

func TestSelectionBoundsOfGroup(t *testing.T) {
	doc := NewDocument(testProject)
	g := insert(t, doc, doc.Root, groupModel("g", 50, 50, false))
	insert(t, doc, g, boxModel("a", 10, 10))
	empty := insert(t, doc, doc.Root, groupModel("empty", 5, 5, false))
	tree := NewSceneTree(doc.Root, testAssets(t))

	assert.Equal(t, Rect{X: 50, Y: 50, Width: 110, Height: 110}, tree.SelectionBounds(tree.Lookup(g.ID)))
	assert.Equal(t, Rect{X: 5, Y: 5, Width: 1, Height: 1}, tree.SelectionBounds(tree.Lookup(empty.ID)))
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 100, Height: 100}, tree.LocalBounds(tree.Lookup(g.ID)))
}

func TestContainsScreenPointRotated(t *testing.T) {
	doc := NewDocument(testProject)
	m := insert(t, doc, doc.Root, boxModel("s", 0, 0))
	m.Angle = 45
	tree := NewSceneTree(doc.Root, testAssets(t))
	n := tree.Lookup(m.ID)

	// The unrotated corner region is outside the rotated square.
	assert.False(t, tree.containsScreenPoint(n, Vec2{95, 5}))
	assert.True(t, tree.containsScreenPoint(n, Vec2{0, 100}))
	assert.True(t, tree.containsScreenPoint(n, Vec2{0, 50}))
}

func TestSnap(t *testing.T) {
	assert.Equal(t, 32.0, Snap(25, 16))
	assert.Equal(t, 16.0, Snap(23, 16))
	assert.Equal(t, 7.3, Snap(7.3, 0))

	s := EditorSettings{SteppingEnabled: true, StepWidth: 10, StepHeight: 4}
	assert.Equal(t, Vec2{20, 8}, SnapPoint(Vec2{17, 7}, s))
	s.SteppingEnabled = false
	assert.Equal(t, Vec2{17, 7}, SnapPoint(Vec2{17, 7}, s))
}

func TestTransformRectRotated(t *testing.T) {
	sin, cos := math.Sincos(math.Pi / 2)
	r := transformRect([6]float64{cos, sin, -sin, cos, 0, 0}, Rect{Width: 10, Height: 20})
	require.InDelta(t, -20, r.X, epsilon)
	assert.InDelta(t, 0, r.Y, epsilon)
	assert.InDelta(t, 20, r.Width, epsilon)
	assert.InDelta(t, 10, r.Height, epsilon)
}
