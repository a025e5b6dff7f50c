package sceneedit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBoxes returns an editor over a document with boxes a at (100,100) and
// b at (300,100), both 100x100.
func twoBoxes(t *testing.T) (*Editor, *ObjectModel, *ObjectModel) {
	t.Helper()
	doc := NewDocument(testProject)
	a := insert(t, doc, doc.Root, boxModel("a", 100, 100))
	b := insert(t, doc, doc.Root, boxModel("b", 300, 100))
	return newTestEditor(t, doc), a, b
}

func TestEditorClickSelects(t *testing.T) {
	e, a, _ := twoBoxes(t)
	var fired [][]*SceneNode
	e.OnSelectionChanged(func(nodes []*SceneNode) { fired = append(fired, nodes) })

	e.InjectClick(150, 150)
	drain(e)
	assert.Equal(t, []string{a.ID}, e.Selection().IDs())
	assert.Equal(t, []string{a.ID}, e.Document().Selection)
	require.Len(t, fired, 1)

	e.InjectClick(250, 500)
	drain(e)
	assert.Empty(t, e.Selection().IDs())
	assert.False(t, e.Log().CanUndo(), "selection is not an undo step")
}

func TestEditorDragMovesToReleasePoint(t *testing.T) {
	e, a, _ := twoBoxes(t)
	var refreshed [][]string
	e.OnPropertiesRefresh(func(ids []string) { refreshed = append(refreshed, ids) })

	e.InjectDrag(150, 150, 200, 180, 2)
	drain(e)

	assert.Equal(t, 150.0, a.X)
	assert.Equal(t, 130.0, a.Y)
	assert.Equal(t, "Move", e.Log().UndoLabel())
	assert.Equal(t, []string{a.ID}, e.Selection().IDs())
	require.NotEmpty(t, refreshed)
	assert.Equal(t, []string{a.ID}, refreshed[len(refreshed)-1])

	require.NoError(t, e.Undo())
	drain(e)
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 100.0, a.Y)
	assert.False(t, e.Log().CanUndo())
}

func TestEditorDragDeadZone(t *testing.T) {
	e, a, _ := twoBoxes(t)
	e.InjectDrag(150, 150, 152, 151, 3)
	drain(e)

	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, []string{a.ID}, e.Selection().IDs(), "a short drag is a click")
	assert.False(t, e.Log().CanUndo())
}

func TestEditorBoxSelectFromEmptySpace(t *testing.T) {
	e, a, b := twoBoxes(t)
	e.InjectDrag(50, 50, 450, 250, 4)
	drain(e)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, e.Selection().IDs())

	e.InjectDrag(50, 50, 250, 250, 4)
	drain(e)
	assert.Equal(t, []string{a.ID}, e.Selection().IDs(), "b is only partly inside")
	assert.Equal(t, 100.0, a.X, "box select moves nothing")
}

func TestEditorEscapeAbortsDrag(t *testing.T) {
	e, a, _ := twoBoxes(t)
	e.InjectPress(150, 150)
	e.InjectMove(200, 180)
	e.InjectKey(KeyEscape)
	e.InjectMove(220, 200)
	e.InjectRelease(220, 200)
	drain(e)

	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 100.0, a.Y)
	assert.False(t, e.Log().CanUndo())
	assert.Equal(t, "idle", e.Router().Mode())
	assert.Equal(t, []string{a.ID}, e.Selection().IDs(), "escape mid-gesture keeps the selection")

	e.InjectKey(KeyEscape)
	drain(e)
	assert.Empty(t, e.Selection().IDs())
}

func TestEditorFocusLostAbortsDrag(t *testing.T) {
	e, a, _ := twoBoxes(t)
	e.InjectPress(150, 150)
	e.InjectMove(200, 180)
	e.InjectFocusLost()
	e.InjectRelease(200, 180)
	drain(e)

	assert.Equal(t, 100.0, a.X)
	assert.False(t, e.Log().CanUndo())
}

func TestRouterIgnoresKeysMidGesture(t *testing.T) {
	e, a, _ := twoBoxes(t)
	r := e.Router()
	r.ProcessPointer(Vec2{150, 150}, true, MouseButtonLeft, 0)
	r.ProcessPointer(Vec2{180, 150}, true, MouseButtonLeft, 0)
	assert.Equal(t, "dragging", r.Mode())

	assert.False(t, r.ProcessKey(KeyDelete, 0))
	assert.False(t, r.ProcessKey(KeyZ, ModCtrl))
	assert.NotNil(t, e.Document().Find(a.ID))

	r.ProcessPointer(Vec2{180, 150}, false, MouseButtonLeft, 0)
	assert.Equal(t, 130.0, a.X)
	assert.True(t, r.ProcessKey(KeyDelete, 0))
	drain(e)
	assert.Nil(t, e.Document().Find(a.ID))
}

func TestRouterRightButtonIsIgnored(t *testing.T) {
	e, a, _ := twoBoxes(t)
	r := e.Router()
	r.ProcessPointer(Vec2{150, 150}, true, MouseButtonRight, 0)
	r.ProcessPointer(Vec2{200, 150}, true, MouseButtonRight, 0)
	r.ProcessPointer(Vec2{200, 150}, false, MouseButtonRight, 0)
	assert.Equal(t, 100.0, a.X)
	assert.Empty(t, e.Selection().IDs())
}

func TestEditorPan(t *testing.T) {
	e, _, _ := twoBoxes(t)
	e.InjectMiddlePress(10, 10)
	e.InjectMove(60, 30)
	e.InjectRelease(60, 30)
	drain(e)
	assert.Equal(t, Vec2{50, 20}, e.Zoom().Translation())
	assert.Empty(t, e.Selection().IDs())

	e.SetInjectModifiers(ModAlt)
	e.InjectDrag(150, 150, 140, 160, 2)
	e.SetInjectModifiers(0)
	drain(e)
	assert.Equal(t, Vec2{40, 30}, e.Zoom().Translation())
	assert.Empty(t, e.Selection().IDs(), "alt-drag pans instead of selecting")
}

func TestEditorWheelZooms(t *testing.T) {
	e, _, _ := twoBoxes(t)
	e.InjectWheel(400, 300, 1)
	drain(e)
	assert.InDelta(t, 1.2, e.Zoom().Scale(), epsilon)

	e.InjectWheel(400, 300, -1)
	drain(e)
	assert.InDelta(t, 1.0, e.Zoom().Scale(), epsilon)
}

func TestEditorDeleteUndoRedoKeys(t *testing.T) {
	e, a, _ := twoBoxes(t)
	doc := e.Document()
	e.InjectClick(150, 150)
	e.InjectKey(KeyDelete)
	drain(e)
	require.Nil(t, doc.Find(a.ID))
	assert.Empty(t, e.Selection().IDs())

	e.SetInjectModifiers(ModCtrl)
	e.InjectKey(KeyZ)
	e.SetInjectModifiers(0)
	drain(e)
	require.NotNil(t, doc.Find(a.ID))
	assert.Equal(t, []string{a.ID}, e.Selection().IDs())

	e.SetInjectModifiers(ModCtrl)
	e.InjectKey(KeyY)
	e.SetInjectModifiers(0)
	drain(e)
	assert.Nil(t, doc.Find(a.ID))

	e.SetInjectModifiers(ModMeta)
	e.InjectKey(KeyZ)
	e.SetInjectModifiers(ModMeta | ModShift)
	e.InjectKey(KeyZ)
	e.SetInjectModifiers(0)
	drain(e)
	assert.Nil(t, doc.Find(a.ID), "shift+shortcut+z redoes")
	assert.Len(t, doc.Root.Children, 1)
}

func TestEditorSelectAllAndGroupKeys(t *testing.T) {
	e, a, b := twoBoxes(t)
	doc := e.Document()
	e.SetInjectModifiers(ModCtrl)
	e.InjectKey(KeyA)
	e.InjectKey(KeyG)
	e.SetInjectModifiers(0)
	drain(e)

	require.Len(t, doc.Root.Children, 1)
	g := doc.Root.Children[0]
	assert.True(t, g.IsGroup())
	require.Len(t, g.Children, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{g.Children[0].ID, g.Children[1].ID})
	assert.Equal(t, []string{g.ID}, e.Selection().IDs())
	assert.Equal(t, Vec2{100, 100}, e.Tree().WorldPosition(node(t, e, a)))
}

func TestEditorCopyPasteKeys(t *testing.T) {
	e, _, _ := twoBoxes(t)
	doc := e.Document()
	e.InjectClick(150, 150)
	e.SetInjectModifiers(ModCtrl)
	e.InjectKey(KeyC)
	e.InjectKey(KeyV)
	e.SetInjectModifiers(0)
	drain(e)

	require.Len(t, doc.Root.Children, 3)
	pasted := doc.Root.Children[2]
	assert.Equal(t, "a_1", pasted.EditorName)
	assert.Equal(t, []string{pasted.ID}, e.Selection().IDs())
}

func TestEditorCutAndPaste(t *testing.T) {
	e, a, _ := twoBoxes(t)
	doc := e.Document()
	e.InjectClick(150, 150)
	drain(e)
	require.NoError(t, e.Cut())
	drain(e)
	assert.Nil(t, doc.Find(a.ID))
	require.Len(t, doc.Root.Children, 1)

	require.NoError(t, e.Paste())
	drain(e)
	require.Len(t, doc.Root.Children, 2)
	assert.NotEqual(t, a.ID, doc.Root.Children[1].ID)
}

func TestEditorArrowNudges(t *testing.T) {
	e, a, _ := twoBoxes(t)
	e.InjectClick(150, 150)
	e.InjectKey(KeyRight)
	e.SetInjectModifiers(ModShift)
	e.InjectKey(KeyDown)
	e.SetInjectModifiers(0)
	drain(e)
	assert.Equal(t, 101.0, a.X)
	assert.Equal(t, 110.0, a.Y)
	assert.Equal(t, "Nudge", e.Log().UndoLabel())

	s := DefaultSettings()
	s.SteppingEnabled = true
	e.ApplySettings(s)
	e.InjectKey(KeyLeft)
	e.InjectKey(KeyUp)
	drain(e)
	assert.Equal(t, 85.0, a.X)
	assert.Equal(t, 94.0, a.Y)

	// All four nudges merged into one step.
	require.NoError(t, e.Undo())
	drain(e)
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 100.0, a.Y)
}

func TestEditorDigitKeysSetEditMode(t *testing.T) {
	e, _, _ := twoBoxes(t)
	e.InjectClick(150, 150)
	e.InjectKey(KeyDigit3)
	drain(e)
	assert.Equal(t, EditAngle, e.EditMode())
	assert.Equal(t, EditAngle, e.Handles().Mode())
	assert.NotEmpty(t, e.Handles().Handles())

	e.InjectKey(KeyDigit1)
	drain(e)
	assert.Equal(t, EditMove, e.EditMode())
	assert.Len(t, e.Handles().Handles(), 3)
}

func TestEditorRevealKey(t *testing.T) {
	e, _, _ := twoBoxes(t)
	e.InjectKey(KeyF)
	drain(e)
	assert.Equal(t, Vec2{}, e.Zoom().Translation(), "nothing selected")

	e.InjectClick(150, 150)
	e.InjectKey(KeyF)
	drain(e)
	assertVecNear(t, Vec2{250, 150}, e.Zoom().Translation())
	assert.InDelta(t, 1.0, e.Zoom().Scale(), epsilon)
}

func TestEditorHandleDragThroughRouter(t *testing.T) {
	e, a, _ := twoBoxes(t)
	e.SetEditMode(EditMove)
	e.InjectClick(150, 150)
	drain(e)
	require.Len(t, e.Handles().Handles(), 3)

	// The x-axis arrow sits handleArm pixels right of the origin.
	e.InjectDrag(140, 100, 170, 120, 3)
	drain(e)
	assert.Equal(t, 130.0, a.X)
	assert.Equal(t, 100.0, a.Y)
	assert.Equal(t, "move", e.Log().UndoLabel())
}

func TestEditorUpdateRebuildsThenReselects(t *testing.T) {
	e, a, b := twoBoxes(t)
	e.Selection().SetSelectionIDs([]string{a.ID, b.ID})
	require.NoError(t, e.MakeGroup())

	g := e.Document().Root.Children[0]
	assert.Nil(t, e.Tree().Lookup(g.ID), "rebuild waits for the next tick")

	e.Update(1.0 / 60)
	require.NotNil(t, e.Tree().Lookup(g.ID))
	assert.Equal(t, []string{g.ID}, e.Selection().IDs())
	assert.Equal(t, 0, e.Tasks().Len())
}

func TestEditorSetBridge(t *testing.T) {
	e, a, _ := twoBoxes(t)
	rb := &recordingBridge{next: e.Log()}
	e.SetBridge(rb)

	e.InjectDrag(150, 150, 160, 160, 2)
	drain(e)
	require.Len(t, rb.got, 1)
	assert.Equal(t, "Move", rb.got[0].Label)
	assert.Equal(t, []OpType{OpUpdateLocation, OpPropertiesChanged}, opTypes(rb.got[0]))
	assert.Equal(t, 110.0, a.X)

	e.SetBridge(nil)
	e.InjectDrag(160, 160, 170, 170, 2)
	drain(e)
	assert.Len(t, rb.got, 1)
	assert.Equal(t, 120.0, a.X)
}

func TestEditorSetEditModeRejectsUnknown(t *testing.T) {
	e, _, _ := twoBoxes(t)
	assert.Panics(t, func() { e.SetEditMode(99) })
	assert.NotPanics(t, func() { e.SetEditMode(EditNone) })
	assert.Equal(t, EditNone, e.EditMode())
}

func TestEditorRestoresPersistedSelection(t *testing.T) {
	doc := NewDocument(testProject)
	a := insert(t, doc, doc.Root, boxModel("a", 100, 100))
	doc.Selection = []string{a.ID, "missing"}
	e := newTestEditor(t, doc)
	assert.Equal(t, []string{a.ID}, e.Selection().IDs())
}

// offlineBridge applies composites locally and then fails to forward them.
type offlineBridge struct{ log *OperationLog }

func (b offlineBridge) Submit(c CompositeOperation) error {
	if err := b.log.Submit(c); err != nil {
		return err
	}
	return fmt.Errorf("offline: %w", ErrNotPublished)
}

func TestEditorKeepsEditsThatWereNotPublished(t *testing.T) {
	e, a, _ := twoBoxes(t)
	shown := captureMessages(e)
	e.SetBridge(offlineBridge{e.Log()})

	e.InjectDrag(150, 150, 200, 180, 2)
	drain(e)

	assert.Equal(t, Vec2{150, 130}, Vec2{a.X, a.Y}, "the drag is not rolled back")
	assert.Equal(t, "Move", e.Log().UndoLabel())
	require.Len(t, *shown, 1)
	assert.Equal(t, "Move", (*shown)[0].title)
}

func TestEditorSelectionChangeKeepsExistingHandles(t *testing.T) {
	e, a, b := twoBoxes(t)
	e.SetEditMode(EditMove)
	e.Selection().SetSelectionIDs([]string{a.ID, b.ID})
	require.Len(t, e.Handles().Handles(), 6)
	kept := e.Handles().Handles()[3:]
	require.Same(t, node(t, e, b), kept[0].Node())
	kept = append([]EditHandler(nil), kept...)

	// Shift-click a to drop it from the selection.
	e.SetInjectModifiers(ModShift)
	e.InjectClick(150, 150)
	e.SetInjectModifiers(0)
	drain(e)

	assert.Equal(t, []string{b.ID}, e.Selection().IDs())
	require.Len(t, e.Handles().Handles(), 3)
	for i, h := range e.Handles().Handles() {
		assert.Same(t, kept[i], h)
	}
}
