package sceneedit

import "unicode/utf8"

// Placeholder and text metrics used when a node has no resolvable size.
const (
	placeholderSize = 32.0
	textGlyphWidth  = 7.0
	textLineHeight  = 13.0
)

// SceneNode is the visual counterpart of one ObjectModel. Groups own their
// children; parents are looked up through the owning SceneTree, a node keeps
// no pointer back to its parent.
type SceneNode struct {
	id       string
	model    *ObjectModel
	children []*SceneNode

	tree *SceneTree // nil while detached

	local [6]float64
	size  Vec2

	disposed bool
}

// newSceneNode builds a detached node for m and, for groups, its whole
// subtree of children.
func newSceneNode(m *ObjectModel, res AssetResolver) *SceneNode {
	root := &SceneNode{id: m.ID, model: m}
	root.UpdateFromModel(res)
	type pending struct {
		node  *SceneNode
		model *ObjectModel
	}
	stack := []pending{{root, m}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, cm := range cur.model.Children {
			child := &SceneNode{id: cm.ID, model: cm}
			child.UpdateFromModel(res)
			cur.node.children = append(cur.node.children, child)
			if len(cm.Children) > 0 {
				stack = append(stack, pending{child, cm})
			}
		}
	}
	return root
}

// ID returns the id of the model this node renders.
func (n *SceneNode) ID() string { return n.id }

// Model returns the backing object model.
func (n *SceneNode) Model() *ObjectModel { return n.model }

// Name returns the model's editor name.
func (n *SceneNode) Name() string {
	if n.model == nil {
		return ""
	}
	return n.model.EditorName
}

// IsGroup reports whether the node is a group container.
func (n *SceneNode) IsGroup() bool { return n.model != nil && n.model.IsGroup() }

// IsClosed reports whether the node is a closed group, which is picked and
// selected as a single unit.
func (n *SceneNode) IsClosed() bool { return n.IsGroup() && n.model.Closed }

// IsPickable reports whether the node may be picked in the scene.
func (n *SceneNode) IsPickable() bool { return n.model != nil && n.model.Pickable }

// IsPrefabInstance reports whether the node is the root of a prefab instance.
func (n *SceneNode) IsPrefabInstance() bool { return n.model != nil && n.model.PrefabInstance }

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *SceneNode) Children() []*SceneNode { return n.children }

// NumChildren returns the number of children.
func (n *SceneNode) NumChildren() int { return len(n.children) }

// IsDisposed returns true if the node has been discarded by a rebuild.
func (n *SceneNode) IsDisposed() bool { return n.disposed }

// Size returns the resolved content size.
func (n *SceneNode) Size() Vec2 { return n.size }

// LocalTransform returns the cached local affine matrix.
func (n *SceneNode) LocalTransform() [6]float64 { return n.local }

// ContentBounds returns the node's content rectangle in its own local space.
// Groups have no content of their own and return an empty rectangle.
func (n *SceneNode) ContentBounds() Rect {
	if n.IsGroup() {
		return Rect{}
	}
	m := n.model
	return Rect{
		X:      -m.AnchorX * n.size.X,
		Y:      -m.AnchorY * n.size.Y,
		Width:  n.size.X,
		Height: n.size.Y,
	}
}

// UpdateFromModel refreshes the cached transform and content size from the
// model. Called synchronously whenever a single node's properties change.
func (n *SceneNode) UpdateFromModel(res AssetResolver) {
	n.local = computeLocalTransform(n.model)
	n.size = contentSize(n.model, res)
}

func contentSize(m *ObjectModel, res AssetResolver) Vec2 {
	switch m.Kind {
	case KindGroup:
		return Vec2{}
	case KindText:
		if m.Width > 0 && m.Height > 0 {
			return Vec2{m.Width, m.Height}
		}
		if m.Text == "" {
			return Vec2{textGlyphWidth, textLineHeight}
		}
		return Vec2{float64(utf8.RuneCountInString(m.Text)) * textGlyphWidth, textLineHeight}
	case KindTileSprite:
		if m.Width > 0 && m.Height > 0 {
			return Vec2{m.Width, m.Height}
		}
	}
	if m.Texture != nil && res != nil {
		if info, ok := res.Resolve(*m.Texture); ok && info.Width > 0 && info.Height > 0 {
			return Vec2{info.Width, info.Height}
		}
		if globalDebug {
			logger().Debug("sceneedit: texture not resolved, using placeholder",
				"node", m.ID, "key", m.Texture.Key, "frame", m.Texture.Frame)
		}
	}
	return Vec2{placeholderSize, placeholderSize}
}

// dispose marks the node and its subtree as discarded.
func (n *SceneNode) dispose() {
	stack := []*SceneNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.disposed = true
		cur.tree = nil
		stack = append(stack, cur.children...)
		cur.children = nil
	}
}

// indexOf returns the position of child among n's children, or -1.
func (n *SceneNode) indexOf(child *SceneNode) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
