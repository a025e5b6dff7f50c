package sceneedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) (*OperationLog, *Document, *ObjectModel) {
	t.Helper()
	doc := NewDocument(testProject)
	a := insert(t, doc, doc.Root, boxModel("a", 10, 20))
	return NewOperationLog(doc), doc, a
}

func TestOperationLogAddUndoRedo(t *testing.T) {
	log, doc, _ := newTestLog(t)
	b := boxModel("b", 0, 0)
	require.NoError(t, log.Submit(NewComposite("Add", AddNode(b, -1, 5, 6, doc.Root.ID))))

	added := doc.Find(b.ID)
	require.NotNil(t, added)
	assert.Equal(t, 5.0, added.X, "the operation's location wins over the model's")
	assert.Equal(t, "Add", log.UndoLabel())

	ok, err := log.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, doc.Find(b.ID))
	assert.True(t, log.CanRedo())

	ok, err = log.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, doc.Find(b.ID))
	assert.False(t, log.CanRedo())
}

func TestOperationLogDeleteRestoresPosition(t *testing.T) {
	log, doc, a := newTestLog(t)
	insert(t, doc, doc.Root, boxModel("b", 0, 0))
	require.NoError(t, log.Submit(NewComposite("Delete", DeleteNode(a.ID))))
	assert.Len(t, doc.Root.Children, 1)

	_, err := log.Undo()
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 2)
	restored := doc.Root.Children[0]
	assert.Equal(t, a.ID, restored.ID)
	assert.Equal(t, 10.0, restored.X)
	assert.Equal(t, 20.0, restored.Y)
}

func TestOperationLogRollsBackFailedComposite(t *testing.T) {
	log, _, a := newTestLog(t)
	c := NewComposite("Broken",
		UpdateLocation(a.ID, 99, 99, false),
		DeleteNode("missing"),
	)
	err := log.Submit(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 20.0, a.Y)
	assert.False(t, log.CanUndo())
}

func TestOperationLogSetPropertiesRollsBackUnknownKey(t *testing.T) {
	log, _, a := newTestLog(t)
	err := log.Submit(NewComposite("Props", SetProperties(a.ID, map[string]float64{PropAngle: 30, PropBodyWidth: 5}, nil)))
	require.Error(t, err)
	assert.Equal(t, 0.0, a.Angle)
}

func TestOperationLogLiveEditUsesRecordedPrevious(t *testing.T) {
	log, _, a := newTestLog(t)
	// The caller already moved the model live.
	a.X, a.Y = 50, 60
	require.NoError(t, log.Submit(NewComposite("Move", UpdateLocation(a.ID, 50, 60, false).From(10, 20))))
	_, err := log.Undo()
	require.NoError(t, err)
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 20.0, a.Y)

	a.ScaleX = 3
	require.NoError(t, log.Submit(NewComposite("Scale",
		SetProperties(a.ID, map[string]float64{PropScaleX: 3}, map[string]float64{PropScaleX: 1}))))
	_, err = log.Undo()
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.ScaleX)
}

func TestOperationLogCoalescesNudges(t *testing.T) {
	log, _, a := newTestLog(t)
	require.NoError(t, log.Submit(NewComposite("Nudge", UpdateLocation(a.ID, 11, 20, false))))
	require.NoError(t, log.Submit(NewComposite("Nudge", UpdateLocation(a.ID, 12, 20, true))))
	require.NoError(t, log.Submit(NewComposite("Nudge", UpdateLocation(a.ID, 13, 20, true))))
	assert.Equal(t, 13.0, a.X)

	_, err := log.Undo()
	require.NoError(t, err)
	assert.Equal(t, 10.0, a.X, "one undo reverts every merged nudge")
	assert.False(t, log.CanUndo())

	_, err = log.Redo()
	require.NoError(t, err)
	assert.Equal(t, 13.0, a.X)
}

func TestOperationLogAppendToDifferentTargetIsNewStep(t *testing.T) {
	log, doc, a := newTestLog(t)
	b := insert(t, doc, doc.Root, boxModel("b", 0, 0))
	require.NoError(t, log.Submit(NewComposite("Nudge", UpdateLocation(a.ID, 11, 20, false))))
	require.NoError(t, log.Submit(NewComposite("Nudge", UpdateLocation(b.ID, 1, 0, true))))

	_, err := log.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 11.0, a.X)
	assert.True(t, log.CanUndo())
}

func TestOperationLogTexture(t *testing.T) {
	log, _, a := newTestLog(t)
	require.NoError(t, log.Submit(NewComposite("Texture", ChangeTexture(a.ID, AssetRef{ProjectID: testProject, Key: "wide.png"}))))
	assert.Equal(t, "wide.png", a.Texture.Key)
	_, err := log.Undo()
	require.NoError(t, err)
	assert.Equal(t, "box.png", a.Texture.Key)
}

func TestOperationLogEmitOrder(t *testing.T) {
	log, doc, a := newTestLog(t)
	var events []ChangeEvent
	log.OnChange(func(ev ChangeEvent) { events = append(events, ev) })

	b := boxModel("b", 0, 0)
	require.NoError(t, log.Submit(NewComposite("Add",
		PropertiesChanged(a.ID),
		Select(b.ID),
		AddNode(b, -1, 0, 0, doc.Root.ID),
	)))
	require.Len(t, events, 3)
	assert.Equal(t, ChangeStructure, events[0].Kind)
	assert.Equal(t, ChangeSelection, events[1].Kind)
	assert.Equal(t, []string{b.ID}, events[1].IDs)
	assert.Equal(t, ChangeRefresh, events[2].Kind)
	assert.Equal(t, []string{b.ID}, doc.Selection)

	events = nil
	require.NoError(t, log.Submit(NewComposite("Move", UpdateLocation(a.ID, 0, 0, false))))
	require.Len(t, events, 1)
	assert.Equal(t, ChangeEvent{Kind: ChangeProperties, IDs: []string{a.ID}}, events[0])
}

func TestOperationLogSelectUndo(t *testing.T) {
	log, doc, a := newTestLog(t)
	doc.Selection = []string{"before"}
	require.NoError(t, log.Submit(NewComposite("Select", Select(a.ID))))
	_, err := log.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, doc.Selection)
}

func TestOperationLogLimit(t *testing.T) {
	log, _, a := newTestLog(t)
	log.SetLimit(2)
	for i := 1; i <= 3; i++ {
		require.NoError(t, log.Submit(NewComposite("Move", UpdateLocation(a.ID, float64(i), 0, false))))
	}
	ok, _ := log.Undo()
	assert.True(t, ok)
	ok, _ = log.Undo()
	assert.True(t, ok)
	ok, _ = log.Undo()
	assert.False(t, ok)
	assert.Equal(t, 1.0, a.X)
}

func TestOperationLogEmptyCompositeIsIgnored(t *testing.T) {
	log, _, _ := newTestLog(t)
	fired := false
	log.OnChange(func(ChangeEvent) { fired = true })
	require.NoError(t, log.Submit(NewComposite("Nothing")))
	assert.False(t, fired)
	assert.False(t, log.CanUndo())
}

func TestOperationLogSubmitClearsRedo(t *testing.T) {
	log, _, a := newTestLog(t)
	require.NoError(t, log.Submit(NewComposite("Move", UpdateLocation(a.ID, 1, 1, false))))
	_, err := log.Undo()
	require.NoError(t, err)
	require.NoError(t, log.Submit(NewComposite("Move", UpdateLocation(a.ID, 2, 2, false))))
	assert.False(t, log.CanRedo())
}
