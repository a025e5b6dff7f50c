package sceneedit

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownNode is returned when an operation references an id that is not
// part of the document.
var ErrUnknownNode = errors.New("sceneedit: unknown node")

// Document is the in-memory document model the editor operates on. It owns
// the object models, the editor settings and the persisted selection. All
// mutations go through an OperationLog so they can be undone.
type Document struct {
	ProjectID          string         `json:"projectId"`
	Prefab             bool           `json:"prefab,omitempty"`
	SingleSpritePrefab bool           `json:"singleSpritePrefab,omitempty"`
	Settings           EditorSettings `json:"settings"`
	Root               *ObjectModel   `json:"root"`
	Selection          []string       `json:"selection,omitempty"`

	index   map[string]*ObjectModel
	parents map[string]string
}

// NewDocument creates an empty document whose root is an open "world" group.
func NewDocument(projectID string) *Document {
	root := NewGroupModel("world")
	root.Pickable = false
	d := &Document{
		ProjectID: projectID,
		Root:      root,
		Settings:  DefaultSettings(),
	}
	d.reindex()
	return d
}

// LoadDocument decodes a JSON document.
func LoadDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("sceneedit: decode document: %w", err)
	}
	if d.Root == nil {
		return nil, fmt.Errorf("sceneedit: decode document: missing root")
	}
	if !d.Root.IsGroup() {
		return nil, fmt.Errorf("sceneedit: decode document: root must be a group, got %q", d.Root.Kind)
	}
	d.reindex()
	return &d, nil
}

// PrefabRoot returns the object owning the whole content of a prefab
// document, or nil when the document is not a prefab or its root does not
// hold exactly one object.
func (d *Document) PrefabRoot() *ObjectModel {
	if !d.Prefab || len(d.Root.Children) != 1 {
		return nil
	}
	return d.Root.Children[0]
}

// Marshal encodes the document as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func (d *Document) reindex() {
	d.index = make(map[string]*ObjectModel)
	d.parents = make(map[string]string)
	d.indexSubtree(d.Root, "")
}

func (d *Document) indexSubtree(m *ObjectModel, parentID string) {
	d.index[m.ID] = m
	if parentID != "" {
		d.parents[m.ID] = parentID
	}
	m.Walk(func(c *ObjectModel) bool {
		for _, child := range c.Children {
			d.index[child.ID] = child
			d.parents[child.ID] = c.ID
		}
		return true
	})
}

func (d *Document) unindexSubtree(m *ObjectModel) {
	m.Walk(func(c *ObjectModel) bool {
		delete(d.index, c.ID)
		delete(d.parents, c.ID)
		return true
	})
}

// Find returns the model with the given id, or nil.
func (d *Document) Find(id string) *ObjectModel {
	return d.index[id]
}

// ParentOf returns the parent model of id, or nil for the root and unknown ids.
func (d *Document) ParentOf(id string) *ObjectModel {
	pid, ok := d.parents[id]
	if !ok {
		return nil
	}
	return d.index[pid]
}

// Depth returns the number of ancestors of id (0 for the root).
func (d *Document) Depth(id string) int {
	depth := 0
	for pid, ok := d.parents[id]; ok; pid, ok = d.parents[pid] {
		depth++
	}
	return depth
}

// IsPrefabInstanceComponent reports whether id lives inside a prefab
// instance, i.e. some strict ancestor is a prefab instance root.
func (d *Document) IsPrefabInstanceComponent(id string) bool {
	for pid, ok := d.parents[id]; ok; pid, ok = d.parents[pid] {
		if p := d.index[pid]; p != nil && p.PrefabInstance {
			return true
		}
	}
	return false
}

// Insert adds m (and its subtree) under parentID at index. An index outside
// [0, len(children)] appends.
func (d *Document) Insert(parentID string, index int, m *ObjectModel) error {
	parent := d.index[parentID]
	if parent == nil {
		return fmt.Errorf("sceneedit: insert %q: parent %q: %w", m.ID, parentID, ErrUnknownNode)
	}
	if !parent.IsGroup() {
		return fmt.Errorf("sceneedit: insert %q: parent %q is a %s, not a group", m.ID, parentID, parent.Kind)
	}
	var dup string
	m.Walk(func(c *ObjectModel) bool {
		if _, exists := d.index[c.ID]; exists && dup == "" {
			dup = c.ID
		}
		return dup == ""
	})
	if dup != "" {
		return fmt.Errorf("sceneedit: insert %q: duplicate id %q", m.ID, dup)
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = m
	d.indexSubtree(m, parentID)
	return nil
}

// Remove detaches the model with the given id and returns where it lived.
func (d *Document) Remove(id string) (parentID string, index int, removed *ObjectModel, err error) {
	m := d.index[id]
	if m == nil {
		return "", -1, nil, fmt.Errorf("sceneedit: remove %q: %w", id, ErrUnknownNode)
	}
	parent := d.ParentOf(id)
	if parent == nil {
		return "", -1, nil, fmt.Errorf("sceneedit: remove %q: the root cannot be removed", id)
	}
	index = parent.indexOfChild(id)
	copy(parent.Children[index:], parent.Children[index+1:])
	parent.Children[len(parent.Children)-1] = nil
	parent.Children = parent.Children[:len(parent.Children)-1]
	d.unindexSubtree(m)
	return parent.ID, index, m, nil
}

// UniqueName returns a name based on base that no model in the document uses.
func (d *Document) UniqueName(base string) string {
	return uniqueName(base, d.names())
}

func (d *Document) names() map[string]bool {
	used := make(map[string]bool, len(d.index))
	for _, m := range d.index {
		used[m.EditorName] = true
	}
	return used
}

// Len returns the number of models in the document, root included.
func (d *Document) Len() int {
	return len(d.index)
}
