package sceneedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneTreeMirrorsModel(t *testing.T) {
	doc := NewDocument(testProject)
	g := insert(t, doc, doc.Root, groupModel("g", 0, 0, false))
	a := insert(t, doc, g, boxModel("a", 0, 0))
	b := insert(t, doc, doc.Root, boxModel("b", 0, 0))

	tree := NewSceneTree(doc.Root, testAssets(t))
	assert.Equal(t, 4, tree.Len())
	na := tree.Lookup(a.ID)
	require.NotNil(t, na)
	assert.Equal(t, g.ID, tree.Parent(na).ID())
	assert.Equal(t, 2, tree.Depth(na))
	assert.True(t, tree.IsAncestor(tree.Root(), na))
	assert.False(t, tree.IsAncestor(na, na))
	assert.Equal(t, []*SceneNode{tree.Lookup(g.ID), tree.Root()}, tree.Ancestors(na))
	assert.Equal(t, 1, tree.IndexInParent(tree.Lookup(b.ID)))
	assert.Equal(t, -1, tree.IndexInParent(tree.Root()))

	order := tree.DisplayOrder()
	assert.Less(t, order[g.ID], order[a.ID])
	assert.Less(t, order[a.ID], order[b.ID])
}

func TestSceneTreeRebuildDisposesOldNodes(t *testing.T) {
	doc := NewDocument(testProject)
	a := insert(t, doc, doc.Root, boxModel("a", 0, 0))
	tree := NewSceneTree(doc.Root, nil)
	old := tree.Lookup(a.ID)

	tree.Rebuild(doc.Root)
	assert.True(t, old.IsDisposed())
	assert.False(t, tree.Contains(old))
	fresh := tree.Lookup(a.ID)
	assert.NotSame(t, old, fresh)
	assert.True(t, tree.Contains(fresh))
}

func TestSceneTreeDeepNesting(t *testing.T) {
	doc := NewDocument(testProject)
	parent := doc.Root
	const depth = 10000
	for i := 0; i < depth; i++ {
		g := groupModel("g", 1, 0, false)
		require.NoError(t, doc.Insert(parent.ID, -1, g))
		parent = g
	}
	leaf := insert(t, doc, parent, boxModel("leaf", 0, 0))

	tree := NewSceneTree(doc.Root, testAssets(t))
	n := tree.Lookup(leaf.ID)
	require.NotNil(t, n)
	assert.Equal(t, depth+1, tree.Depth(n))
	assert.Equal(t, Vec2{depth, 0}, tree.WorldPosition(n))

	count := 0
	tree.Walk(func(*SceneNode) bool { count++; return true })
	assert.Equal(t, depth+2, count)
}

func TestNodeContentSize(t *testing.T) {
	doc := NewDocument(testProject)
	sprite := insert(t, doc, doc.Root, boxModel("s", 0, 0))
	missing := NewObjectModel(KindSprite, "missing")
	missing.Texture = &AssetRef{ProjectID: testProject, Key: "nope.png"}
	insert(t, doc, doc.Root, missing)
	label := NewObjectModel(KindText, "label")
	label.Text = "hello"
	insert(t, doc, doc.Root, label)
	tile := NewObjectModel(KindTileSprite, "tile")
	tile.Width, tile.Height = 64, 16
	insert(t, doc, doc.Root, tile)

	tree := NewSceneTree(doc.Root, testAssets(t))
	assert.Equal(t, Vec2{100, 100}, tree.Lookup(sprite.ID).Size())
	assert.Equal(t, Vec2{placeholderSize, placeholderSize}, tree.Lookup(missing.ID).Size())
	assert.Equal(t, Vec2{5 * textGlyphWidth, textLineHeight}, tree.Lookup(label.ID).Size())
	assert.Equal(t, Vec2{64, 16}, tree.Lookup(tile.ID).Size())
}

func TestNodeContentBoundsFollowAnchor(t *testing.T) {
	doc := NewDocument(testProject)
	m := insert(t, doc, doc.Root, boxModel("s", 0, 0))
	m.AnchorX, m.AnchorY = 0.5, 1
	tree := NewSceneTree(doc.Root, testAssets(t))
	assert.Equal(t, Rect{X: -50, Y: -100, Width: 100, Height: 100}, tree.Lookup(m.ID).ContentBounds())
}

func TestSceneTreeRefresh(t *testing.T) {
	doc := NewDocument(testProject)
	m := insert(t, doc, doc.Root, boxModel("s", 0, 0))
	tree := NewSceneTree(doc.Root, testAssets(t))
	m.X = 42
	m.Texture.Key = "wide.png"
	tree.Refresh(m.ID)
	n := tree.Lookup(m.ID)
	assert.Equal(t, 42.0, n.LocalTransform()[4])
	assert.Equal(t, Vec2{200, 50}, n.Size())
	tree.Refresh("unknown")
}
