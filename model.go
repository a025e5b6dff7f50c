package sceneedit

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// ObjectKind distinguishes the kinds of object the editor can place.
type ObjectKind string

const (
	KindSprite     ObjectKind = "sprite"
	KindGroup      ObjectKind = "group"
	KindText       ObjectKind = "text"
	KindTileSprite ObjectKind = "tileSprite"
)

// BodyModel is a static physics body rectangle in the owner's content space.
type BodyModel struct {
	OffsetX float64 `json:"offsetX" yaml:"offset_x"`
	OffsetY float64 `json:"offsetY" yaml:"offset_y"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
}

// ObjectModel is the serializable, document-level description of one scene
// object. Groups own their children through Children; every other kind is a
// leaf.
type ObjectModel struct {
	ID         string     `json:"id" yaml:"id"`
	Kind       ObjectKind `json:"kind" yaml:"kind"`
	EditorName string     `json:"editorName" yaml:"editor_name"`

	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	ScaleX  float64 `json:"scaleX" yaml:"scale_x"`
	ScaleY  float64 `json:"scaleY" yaml:"scale_y"`
	Angle   float64 `json:"angle" yaml:"angle"` // degrees, clockwise
	PivotX  float64 `json:"pivotX" yaml:"pivot_x"`
	PivotY  float64 `json:"pivotY" yaml:"pivot_y"`
	AnchorX float64 `json:"anchorX" yaml:"anchor_x"`
	AnchorY float64 `json:"anchorY" yaml:"anchor_y"`

	// Explicit content size for text and tile sprites. Sprites take their
	// size from the resolved texture.
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`

	Texture *AssetRef  `json:"texture,omitempty" yaml:"texture,omitempty"`
	TileX   float64    `json:"tileX,omitempty" yaml:"tile_x,omitempty"`
	TileY   float64    `json:"tileY,omitempty" yaml:"tile_y,omitempty"`
	Text    string     `json:"text,omitempty" yaml:"text,omitempty"`
	Body    *BodyModel `json:"body,omitempty" yaml:"body,omitempty"`

	Pickable       bool `json:"pickable" yaml:"pickable"`
	Closed         bool `json:"closed,omitempty" yaml:"closed,omitempty"`
	PrefabInstance bool `json:"prefabInstance,omitempty" yaml:"prefab_instance,omitempty"`

	Children []*ObjectModel `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewObjectModel returns a model of the given kind with a fresh id and
// editor defaults (unit scale, pickable).
func NewObjectModel(kind ObjectKind, name string) *ObjectModel {
	return &ObjectModel{
		ID:         NewObjectID(),
		Kind:       kind,
		EditorName: name,
		ScaleX:     1,
		ScaleY:     1,
		Pickable:   true,
	}
}

// NewGroupModel returns an open group model.
func NewGroupModel(name string) *ObjectModel {
	return NewObjectModel(KindGroup, name)
}

// IsGroup reports whether the model can own children.
func (m *ObjectModel) IsGroup() bool {
	return m.Kind == KindGroup
}

// Copy returns a deep copy of the model and its descendants. When keepID is
// false every model in the copy receives a fresh id.
func (m *ObjectModel) Copy(keepID bool) *ObjectModel {
	dst := new(ObjectModel)
	if err := copier.CopyWithOption(dst, m, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("sceneedit: copy object model %q: %v", m.ID, err))
	}
	if !keepID {
		dst.Walk(func(c *ObjectModel) bool {
			c.ID = NewObjectID()
			return true
		})
	}
	return dst
}

// Walk visits m and its descendants in display order (pre-order, parents
// before children). Returning false from fn skips the model's children.
func (m *ObjectModel) Walk(fn func(*ObjectModel) bool) {
	stack := []*ObjectModel{m}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// indexOfChild returns the position of the child with the given id, or -1.
func (m *ObjectModel) indexOfChild(id string) int {
	for i, c := range m.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}
