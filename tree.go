package sceneedit

// SceneTree owns every SceneNode of the editor. Nodes are indexed by id and
// parent lookup goes through a map derived from the tree structure, so a
// node never holds a pointer to its parent.
type SceneTree struct {
	root     *SceneNode
	nodes    map[string]*SceneNode
	parents  map[string]string
	resolver AssetResolver

	// view maps world space (the root's parent space) to screen space.
	// Only the zoom/pan engine writes it.
	view [6]float64
}

// NewSceneTree builds a tree for the given root model.
func NewSceneTree(root *ObjectModel, res AssetResolver) *SceneTree {
	t := &SceneTree{resolver: res, view: identityTransform}
	t.Rebuild(root)
	return t
}

// Rebuild discards every node and recreates the tree from the model. Node
// pointers held elsewhere become stale and must be re-resolved by id.
func (t *SceneTree) Rebuild(root *ObjectModel) {
	if t.root != nil {
		t.root.dispose()
	}
	t.nodes = make(map[string]*SceneNode)
	t.parents = make(map[string]string)
	t.root = newSceneNode(root, t.resolver)
	t.index(t.root, "")
	if globalDebug {
		t.Walk(func(n *SceneNode) bool {
			debugCheckTreeDepth(t, n)
			debugCheckChildCount(n)
			return true
		})
	}
}

func (t *SceneTree) index(n *SceneNode, parentID string) {
	type entry struct {
		node     *SceneNode
		parentID string
	}
	stack := []entry{{n, parentID}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.node.tree = t
		t.nodes[cur.node.id] = cur.node
		if cur.parentID != "" {
			t.parents[cur.node.id] = cur.parentID
		}
		for _, c := range cur.node.children {
			stack = append(stack, entry{c, cur.node.id})
		}
	}
}

// Resolver returns the asset resolver nodes size themselves with.
func (t *SceneTree) Resolver() AssetResolver { return t.resolver }

// Root returns the root group node.
func (t *SceneTree) Root() *SceneNode { return t.root }

// Lookup returns the live node for id, or nil.
func (t *SceneTree) Lookup(id string) *SceneNode { return t.nodes[id] }

// Len returns the number of attached nodes, root included.
func (t *SceneTree) Len() int { return len(t.nodes) }

// Contains reports whether n is currently attached to this tree.
func (t *SceneTree) Contains(n *SceneNode) bool {
	return n != nil && !n.disposed && t.nodes[n.id] == n
}

// Parent returns the parent of n, or nil for the root and detached nodes.
func (t *SceneTree) Parent(n *SceneNode) *SceneNode {
	pid, ok := t.parents[n.id]
	if !ok {
		return nil
	}
	return t.nodes[pid]
}

// Depth returns the number of ancestors of n.
func (t *SceneTree) Depth(n *SceneNode) int {
	depth := 0
	for pid, ok := t.parents[n.id]; ok; pid, ok = t.parents[pid] {
		depth++
	}
	return depth
}

// Ancestors returns the ancestors of n, nearest first.
func (t *SceneTree) Ancestors(n *SceneNode) []*SceneNode {
	var out []*SceneNode
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// IsAncestor reports whether candidate is a strict ancestor of n.
func (t *SceneTree) IsAncestor(candidate, n *SceneNode) bool {
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if p == candidate {
			return true
		}
	}
	return false
}

// IsPrefabInstanceComponent reports whether n lives inside a prefab instance.
func (t *SceneTree) IsPrefabInstanceComponent(n *SceneNode) bool {
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if p.IsPrefabInstance() {
			return true
		}
	}
	return false
}

// Walk visits every attached node in display order (pre-order, parents
// before children, siblings back to front). Returning false skips the
// node's children. The walk uses an explicit stack so arbitrarily deep
// trees cannot exhaust the goroutine stack.
func (t *SceneTree) Walk(fn func(*SceneNode) bool) {
	walkFrom(t.root, fn)
}

func walkFrom(n *SceneNode, fn func(*SceneNode) bool) {
	stack := []*SceneNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// DisplayOrder returns the pre-order index of every attached node. Lower
// values are painted first.
func (t *SceneTree) DisplayOrder() map[string]int {
	order := make(map[string]int, len(t.nodes))
	i := 0
	t.Walk(func(n *SceneNode) bool {
		order[n.id] = i
		i++
		return true
	})
	return order
}

// IndexInParent returns the position of n among its siblings, or -1.
func (t *SceneTree) IndexInParent(n *SceneNode) int {
	p := t.Parent(n)
	if p == nil {
		return -1
	}
	return p.indexOf(n)
}

// Refresh re-reads a single node's model. Unknown ids are ignored.
func (t *SceneTree) Refresh(id string) {
	if n := t.nodes[id]; n != nil {
		n.UpdateFromModel(t.resolver)
	}
}

// RefreshAll re-reads every node's model.
func (t *SceneTree) RefreshAll() {
	for _, n := range t.nodes {
		n.UpdateFromModel(t.resolver)
	}
}
