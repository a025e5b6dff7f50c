package sceneedit

import (
	"encoding/json"
	"fmt"
)

// OpType identifies a structural operation.
type OpType string

const (
	OpAddNode           OpType = "node.add"
	OpDeleteNode        OpType = "node.delete"
	OpUpdateLocation    OpType = "node.location"
	OpSetProperties     OpType = "node.properties"
	OpChangeTexture     OpType = "node.texture"
	OpSelect            OpType = "select"
	OpPropertiesChanged OpType = "properties.changed"
)

// StructuralOperation is one reversible edit of the document. Only the
// fields relevant to Type are set.
type StructuralOperation struct {
	Type OpType `json:"type"`

	// node.delete, node.location, node.properties, node.texture
	ID string `json:"id,omitempty"`

	// select, properties.changed
	IDs []string `json:"ids,omitempty"`

	// node.add: serialized ObjectModel subtree inserted at Index under
	// ParentID, positioned at X/Y. Index -1 appends.
	Model    json.RawMessage `json:"model,omitempty"`
	ParentID string          `json:"parentId,omitempty"`
	Index    int             `json:"index,omitempty"`

	// node.add, node.location
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// node.location. Prev is the location before the edit when the caller
	// already moved the model live (drags); otherwise it is captured when
	// the operation is applied. Append merges the edit into the previous
	// undo step.
	Prev   *Vec2 `json:"prev,omitempty"`
	Append bool  `json:"append,omitempty"`

	// node.properties
	Values   map[string]float64 `json:"values,omitempty"`
	Previous map[string]float64 `json:"previous,omitempty"`

	// node.texture
	Texture     *AssetRef `json:"texture,omitempty"`
	PrevTexture *AssetRef `json:"prevTexture,omitempty"`
}

// AddNode returns an operation inserting model (with its subtree) under
// parentID at insertIndex, positioned at (x, y) in the parent's space.
func AddNode(model *ObjectModel, insertIndex int, x, y float64, parentID string) StructuralOperation {
	data, err := json.Marshal(model)
	if err != nil {
		panic(fmt.Sprintf("sceneedit: encode model %q: %v", model.ID, err))
	}
	return StructuralOperation{
		Type:     OpAddNode,
		Model:    data,
		ParentID: parentID,
		Index:    insertIndex,
		X:        x,
		Y:        y,
	}
}

// DeleteNode returns an operation removing the node with the given id and
// its subtree.
func DeleteNode(id string) StructuralOperation {
	return StructuralOperation{Type: OpDeleteNode, ID: id}
}

// UpdateLocation returns an operation moving a node to (x, y) in its
// parent's space.
func UpdateLocation(id string, x, y float64, appendToLast bool) StructuralOperation {
	return StructuralOperation{Type: OpUpdateLocation, ID: id, X: x, Y: y, Append: appendToLast}
}

// From records the location a node had before a live edit.
func (op StructuralOperation) From(x, y float64) StructuralOperation {
	op.Prev = &Vec2{x, y}
	return op
}

// SetProperties returns an operation writing numeric properties of a node.
// previous holds the values before a live edit and may be nil.
func SetProperties(id string, values, previous map[string]float64) StructuralOperation {
	return StructuralOperation{Type: OpSetProperties, ID: id, Values: values, Previous: previous}
}

// ChangeTexture returns an operation replacing a node's texture.
func ChangeTexture(id string, tex AssetRef) StructuralOperation {
	return StructuralOperation{Type: OpChangeTexture, ID: id, Texture: &tex}
}

// Select returns an operation replacing the selection with ids.
func Select(ids ...string) StructuralOperation {
	return StructuralOperation{Type: OpSelect, IDs: append([]string{}, ids...)}
}

// PropertiesChanged returns the marker asking property views to refresh.
func PropertiesChanged(ids ...string) StructuralOperation {
	return StructuralOperation{Type: OpPropertiesChanged, IDs: append([]string{}, ids...)}
}

// DecodeModel returns the model carried by a node.add operation.
func (op StructuralOperation) DecodeModel() (*ObjectModel, error) {
	if op.Type != OpAddNode {
		return nil, fmt.Errorf("sceneedit: %s operation carries no model", op.Type)
	}
	var m ObjectModel
	if err := json.Unmarshal(op.Model, &m); err != nil {
		return nil, fmt.Errorf("sceneedit: decode model: %w", err)
	}
	return &m, nil
}

// IsStructural reports whether applying op changes the shape of the tree.
func (op StructuralOperation) IsStructural() bool {
	return op.Type == OpAddNode || op.Type == OpDeleteNode
}

// CompositeOperation is an ordered batch of operations applied and undone
// as one step.
type CompositeOperation struct {
	ID    string                `json:"id"`
	Label string                `json:"label,omitempty"`
	Ops   []StructuralOperation `json:"ops"`
}

// NewComposite returns a composite with a fresh id.
func NewComposite(label string, ops ...StructuralOperation) CompositeOperation {
	return CompositeOperation{ID: NewOpID(), Label: label, Ops: ops}
}

// Add appends ops to the batch.
func (c *CompositeOperation) Add(ops ...StructuralOperation) {
	c.Ops = append(c.Ops, ops...)
}

// Empty reports whether the batch holds no operations.
func (c CompositeOperation) Empty() bool {
	return len(c.Ops) == 0
}

// ModelBridge is the single entry point for document mutations. The editor
// builds composites and submits them; it never edits the document
// structure directly.
type ModelBridge interface {
	Submit(op CompositeOperation) error
}

// Property keys accepted by node.properties operations.
const (
	PropScaleX      = "scaleX"
	PropScaleY      = "scaleY"
	PropAngle       = "angle"
	PropPivotX      = "pivotX"
	PropPivotY      = "pivotY"
	PropAnchorX     = "anchorX"
	PropAnchorY     = "anchorY"
	PropX           = "x"
	PropY           = "y"
	PropWidth       = "width"
	PropHeight      = "height"
	PropTileX       = "tileX"
	PropTileY       = "tileY"
	PropBodyOffsetX = "bodyOffsetX"
	PropBodyOffsetY = "bodyOffsetY"
	PropBodyWidth   = "bodyWidth"
	PropBodyHeight  = "bodyHeight"
)

func propertyField(m *ObjectModel, key string) *float64 {
	switch key {
	case PropScaleX:
		return &m.ScaleX
	case PropScaleY:
		return &m.ScaleY
	case PropAngle:
		return &m.Angle
	case PropPivotX:
		return &m.PivotX
	case PropPivotY:
		return &m.PivotY
	case PropAnchorX:
		return &m.AnchorX
	case PropAnchorY:
		return &m.AnchorY
	case PropX:
		return &m.X
	case PropY:
		return &m.Y
	case PropWidth:
		return &m.Width
	case PropHeight:
		return &m.Height
	case PropTileX:
		return &m.TileX
	case PropTileY:
		return &m.TileY
	}
	if m.Body == nil {
		return nil
	}
	switch key {
	case PropBodyOffsetX:
		return &m.Body.OffsetX
	case PropBodyOffsetY:
		return &m.Body.OffsetY
	case PropBodyWidth:
		return &m.Body.Width
	case PropBodyHeight:
		return &m.Body.Height
	}
	return nil
}

// Property returns the numeric property key of m.
func (m *ObjectModel) Property(key string) (float64, bool) {
	f := propertyField(m, key)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// SetProperty writes the numeric property key of m.
func (m *ObjectModel) SetProperty(key string, v float64) bool {
	f := propertyField(m, key)
	if f == nil {
		return false
	}
	*f = v
	return true
}

// Properties returns the current values of the given keys.
func (m *ObjectModel) Properties(keys ...string) map[string]float64 {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		if v, ok := m.Property(k); ok {
			out[k] = v
		}
	}
	return out
}
