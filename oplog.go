package sceneedit

import "fmt"

// ChangeKind classifies a change notification emitted by the OperationLog.
type ChangeKind uint8

const (
	// ChangeStructure: nodes were added or removed. Views must rebuild.
	ChangeStructure ChangeKind = iota
	// ChangeProperties: properties of IDs changed; refresh those nodes only.
	ChangeProperties
	// ChangeSelection: the document selection became IDs.
	ChangeSelection
	// ChangeRefresh: property views for IDs should re-read their values.
	ChangeRefresh
)

// ChangeEvent is delivered to OnChange callbacks after a composite (or its
// undo/redo) has been applied.
type ChangeEvent struct {
	Kind ChangeKind
	IDs  []string
}

const defaultUndoLimit = 200

type logEntry struct {
	composite CompositeOperation
	inverse   []StructuralOperation
}

// OperationLog applies composites to a Document and keeps them for undo and
// redo. It is the reference ModelBridge: a composite is applied completely
// or, if any operation fails, rolled back before Submit returns the error.
type OperationLog struct {
	doc     *Document
	undo    []logEntry
	redo    []logEntry
	limit   int
	changes handlerRegistry[ChangeEvent]
}

// NewOperationLog returns an empty log over doc.
func NewOperationLog(doc *Document) *OperationLog {
	return &OperationLog{doc: doc, limit: defaultUndoLimit}
}

// Document returns the document the log mutates.
func (l *OperationLog) Document() *Document { return l.doc }

// SetLimit caps the number of undo steps kept. Non-positive means unlimited.
func (l *OperationLog) SetLimit(n int) { l.limit = n }

// OnChange registers a callback fired after every applied composite, undo
// and redo.
func (l *OperationLog) OnChange(fn func(ChangeEvent)) CallbackHandle {
	return l.changes.add(fn)
}

// Submit implements ModelBridge.
func (l *OperationLog) Submit(c CompositeOperation) error {
	if c.Empty() {
		return nil
	}
	inverse, err := l.apply(c.Ops)
	if err != nil {
		return fmt.Errorf("sceneedit: submit %q: %w", c.Label, err)
	}
	if !l.coalesce(c) {
		l.undo = append(l.undo, logEntry{composite: c, inverse: inverse})
		if l.limit > 0 && len(l.undo) > l.limit {
			copy(l.undo, l.undo[len(l.undo)-l.limit:])
			l.undo = l.undo[:l.limit]
		}
	}
	l.redo = l.redo[:0]
	l.emit(c.Ops)
	return nil
}

// coalesce folds an appending location update into the previous step when
// that step moved exactly the same nodes.
func (l *OperationLog) coalesce(c CompositeOperation) bool {
	if len(l.undo) == 0 || !isAppendMove(c.Ops) {
		return false
	}
	last := &l.undo[len(l.undo)-1]
	if !isLocationOnly(last.composite.Ops) || !sameTargets(last.composite.Ops, c.Ops) {
		return false
	}
	// Redo starts from the undone state, so the merged step captures its
	// previous locations when applied instead of carrying stale ones.
	merged := make([]StructuralOperation, len(c.Ops))
	for i, op := range c.Ops {
		op.Prev = nil
		merged[i] = op
	}
	last.composite.Ops = merged
	return true
}

func isAppendMove(ops []StructuralOperation) bool {
	for _, op := range ops {
		if op.Type == OpPropertiesChanged {
			continue
		}
		if op.Type != OpUpdateLocation || !op.Append {
			return false
		}
	}
	return true
}

func isLocationOnly(ops []StructuralOperation) bool {
	for _, op := range ops {
		if op.Type != OpUpdateLocation && op.Type != OpPropertiesChanged {
			return false
		}
	}
	return true
}

func sameTargets(a, b []StructuralOperation) bool {
	ids := make(map[string]bool)
	for _, op := range a {
		if op.Type == OpUpdateLocation {
			ids[op.ID] = true
		}
	}
	n := 0
	for _, op := range b {
		if op.Type != OpUpdateLocation {
			continue
		}
		if !ids[op.ID] {
			return false
		}
		n++
	}
	return n == len(ids)
}

// CanUndo reports whether there is a step to undo.
func (l *OperationLog) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether there is a step to redo.
func (l *OperationLog) CanRedo() bool { return len(l.redo) > 0 }

// UndoLabel returns the label of the step Undo would revert.
func (l *OperationLog) UndoLabel() string {
	if len(l.undo) == 0 {
		return ""
	}
	return l.undo[len(l.undo)-1].composite.Label
}

// Undo reverts the most recent step. It reports false when there is nothing
// to undo.
func (l *OperationLog) Undo() (bool, error) {
	if len(l.undo) == 0 {
		return false, nil
	}
	entry := l.undo[len(l.undo)-1]
	if _, err := l.apply(entry.inverse); err != nil {
		return false, fmt.Errorf("sceneedit: undo %q: %w", entry.composite.Label, err)
	}
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, entry)
	l.emit(entry.inverse)
	return true, nil
}

// Redo re-applies the most recently undone step.
func (l *OperationLog) Redo() (bool, error) {
	if len(l.redo) == 0 {
		return false, nil
	}
	entry := l.redo[len(l.redo)-1]
	inverse, err := l.apply(entry.composite.Ops)
	if err != nil {
		return false, fmt.Errorf("sceneedit: redo %q: %w", entry.composite.Label, err)
	}
	entry.inverse = inverse
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, entry)
	l.emit(entry.composite.Ops)
	return true, nil
}

// apply runs ops in order and returns the operations that revert them, in
// the order they must be applied. On failure everything already applied is
// reverted.
func (l *OperationLog) apply(ops []StructuralOperation) ([]StructuralOperation, error) {
	inverse := make([]StructuralOperation, 0, len(ops))
	for i, op := range ops {
		inv, err := l.applyOne(op)
		if err != nil {
			for j := len(inverse) - 1; j >= 0; j-- {
				if _, rerr := l.applyOne(inverse[j]); rerr != nil {
					logger().Error("sceneedit: rollback failed", "op", inverse[j].Type, "id", inverse[j].ID, "error", rerr)
				}
			}
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Type, err)
		}
		inverse = append(inverse, inv)
	}
	for i, j := 0, len(inverse)-1; i < j; i, j = i+1, j-1 {
		inverse[i], inverse[j] = inverse[j], inverse[i]
	}
	return inverse, nil
}

func (l *OperationLog) applyOne(op StructuralOperation) (StructuralOperation, error) {
	d := l.doc
	switch op.Type {
	case OpAddNode:
		m, err := op.DecodeModel()
		if err != nil {
			return StructuralOperation{}, err
		}
		m.X, m.Y = op.X, op.Y
		if err := d.Insert(op.ParentID, op.Index, m); err != nil {
			return StructuralOperation{}, err
		}
		return DeleteNode(m.ID), nil

	case OpDeleteNode:
		parentID, index, removed, err := d.Remove(op.ID)
		if err != nil {
			return StructuralOperation{}, err
		}
		return AddNode(removed, index, removed.X, removed.Y, parentID), nil

	case OpUpdateLocation:
		m := d.Find(op.ID)
		if m == nil {
			return StructuralOperation{}, fmt.Errorf("%q: %w", op.ID, ErrUnknownNode)
		}
		prev := Vec2{m.X, m.Y}
		if op.Prev != nil {
			prev = *op.Prev
		}
		m.X, m.Y = op.X, op.Y
		return UpdateLocation(op.ID, prev.X, prev.Y, false).From(op.X, op.Y), nil

	case OpSetProperties:
		m := d.Find(op.ID)
		if m == nil {
			return StructuralOperation{}, fmt.Errorf("%q: %w", op.ID, ErrUnknownNode)
		}
		keys := make([]string, 0, len(op.Values))
		for k := range op.Values {
			keys = append(keys, k)
		}
		prev := op.Previous
		if prev == nil {
			prev = m.Properties(keys...)
		}
		current := m.Properties(keys...)
		for _, k := range keys {
			if !m.SetProperty(k, op.Values[k]) {
				for ck, cv := range current {
					m.SetProperty(ck, cv)
				}
				return StructuralOperation{}, fmt.Errorf("%q: unknown property %q for %s", op.ID, k, m.Kind)
			}
		}
		return SetProperties(op.ID, prev, op.Values), nil

	case OpChangeTexture:
		m := d.Find(op.ID)
		if m == nil {
			return StructuralOperation{}, fmt.Errorf("%q: %w", op.ID, ErrUnknownNode)
		}
		prev := op.PrevTexture
		if prev == nil && m.Texture != nil {
			t := *m.Texture
			prev = &t
		}
		var next *AssetRef
		if op.Texture != nil {
			t := *op.Texture
			next = &t
		}
		m.Texture = next
		return StructuralOperation{Type: OpChangeTexture, ID: op.ID, Texture: prev, PrevTexture: next}, nil

	case OpSelect:
		prev := d.Selection
		d.Selection = append([]string{}, op.IDs...)
		return Select(prev...), nil

	case OpPropertiesChanged:
		return PropertiesChanged(op.IDs...), nil
	}
	panic(fmt.Sprintf("sceneedit: unknown operation type %q", op.Type))
}

// emit fires the change notifications for a batch of applied operations:
// structure first, then properties, selection and refresh markers.
func (l *OperationLog) emit(ops []StructuralOperation) {
	var (
		structural bool
		propIDs    []string
		selection  []string
		selected   bool
		refreshIDs []string
	)
	for _, op := range ops {
		switch op.Type {
		case OpAddNode, OpDeleteNode:
			structural = true
		case OpUpdateLocation, OpSetProperties, OpChangeTexture:
			propIDs = append(propIDs, op.ID)
		case OpSelect:
			selection = op.IDs
			selected = true
		case OpPropertiesChanged:
			refreshIDs = append(refreshIDs, op.IDs...)
		}
	}
	if structural {
		l.changes.fire(ChangeEvent{Kind: ChangeStructure})
	} else if len(propIDs) > 0 {
		l.changes.fire(ChangeEvent{Kind: ChangeProperties, IDs: propIDs})
	}
	if selected {
		l.changes.fire(ChangeEvent{Kind: ChangeSelection, IDs: append([]string{}, selection...)})
	}
	if len(refreshIDs) > 0 {
		l.changes.fire(ChangeEvent{Kind: ChangeRefresh, IDs: refreshIDs})
	}
}
