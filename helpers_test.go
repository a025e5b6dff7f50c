package sceneedit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testProject = "proj"

// testSheet is a 3-frame spritesheet laid out left to right, with a gap.
const testSheet = `{
  "frames": {
    "a": {"frame": {"x": 0, "y": 0, "w": 32, "h": 32}},
    "b": {"frame": {"x": 40, "y": 0, "w": 32, "h": 32}},
    "c": {"frame": {"x": 0, "y": 40, "w": 32, "h": 32}}
  }
}`

func testAssets(t *testing.T) *AssetRegistry {
	t.Helper()
	reg := NewAssetRegistry()
	reg.AddImage(testProject, "box.png", 100, 100)
	reg.AddImage(testProject, "wide.png", 200, 50)
	atlas, err := LoadAtlas([]byte(testSheet))
	require.NoError(t, err)
	reg.AddAtlas(testProject, "sheet", atlas)
	return reg
}

// boxModel returns a 100x100 sprite named name at (x, y).
func boxModel(name string, x, y float64) *ObjectModel {
	m := NewObjectModel(KindSprite, name)
	m.Texture = &AssetRef{ProjectID: testProject, Key: "box.png"}
	m.X, m.Y = x, y
	return m
}

func groupModel(name string, x, y float64, closed bool) *ObjectModel {
	g := NewGroupModel(name)
	g.X, g.Y = x, y
	g.Closed = closed
	return g
}

func insert(t *testing.T, doc *Document, parent *ObjectModel, m *ObjectModel) *ObjectModel {
	t.Helper()
	require.NoError(t, doc.Insert(parent.ID, -1, m))
	return m
}

func newTestEditor(t *testing.T, doc *Document) *Editor {
	t.Helper()
	return NewEditor(doc, Options{
		Resolver:       testAssets(t),
		Viewport:       Rect{Width: 800, Height: 600},
		RevealDuration: -1,
	})
}

// tick runs n editor updates at 60 TPS.
func tick(e *Editor, n int) {
	for i := 0; i < n; i++ {
		e.Update(1.0 / 60)
	}
}

// drain runs updates until no injected input or task is left.
func drain(e *Editor) {
	for i := 0; i < 1000 && (e.PendingInjections() > 0 || e.tasks.Len() > 0); i++ {
		e.Update(1.0 / 60)
	}
}

func node(t *testing.T, e *Editor, m *ObjectModel) *SceneNode {
	t.Helper()
	n := e.Tree().Lookup(m.ID)
	require.NotNil(t, n, "no node for %s", m.EditorName)
	return n
}

// recordingBridge records composites and forwards them to a log.
type recordingBridge struct {
	next ModelBridge
	got  []CompositeOperation
	err  error
}

func (b *recordingBridge) Submit(c CompositeOperation) error {
	b.got = append(b.got, c)
	if b.err != nil {
		return b.err
	}
	if b.next == nil {
		return nil
	}
	return b.next.Submit(c)
}

func opTypes(c CompositeOperation) []OpType {
	out := make([]OpType, len(c.Ops))
	for i, op := range c.Ops {
		out[i] = op.Type
	}
	return out
}
