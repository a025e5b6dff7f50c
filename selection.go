package sceneedit

import (
	"fmt"
	"sort"
)

// SelectionBox is the overlay rectangle drawn around one selected node, in
// screen space.
type SelectionBox struct {
	NodeID string
	Bounds Rect
}

// Selection is the ordered, duplicate-free set of selected nodes together
// with the box-selection gesture and the overlay boxes. The set is always
// replaced wholesale through SetSelection, which fires exactly one change
// notification per call.
type Selection struct {
	tree  *SceneTree
	nodes []*SceneNode
	boxes []SelectionBox

	boxActive bool
	boxStart  Vec2
	boxEnd    Vec2

	status  string
	changed handlerRegistry[[]*SceneNode]
}

// NewSelection returns an empty selection over tree.
func NewSelection(tree *SceneTree) *Selection {
	return &Selection{tree: tree}
}

// OnChange registers a callback fired after every SetSelection.
func (s *Selection) OnChange(fn func([]*SceneNode)) CallbackHandle {
	return s.changed.add(fn)
}

// Nodes returns a copy of the selected nodes in selection order.
func (s *Selection) Nodes() []*SceneNode {
	return append([]*SceneNode(nil), s.nodes...)
}

// IDs returns the ids of the selected nodes in selection order.
func (s *Selection) IDs() []string {
	ids := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.id
	}
	return ids
}

// Len returns the number of selected nodes.
func (s *Selection) Len() int { return len(s.nodes) }

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return len(s.nodes) == 0 }

// Contains reports whether a node with n's id is selected.
func (s *Selection) Contains(n *SceneNode) bool {
	if n == nil {
		return false
	}
	for _, sel := range s.nodes {
		if sel.id == n.id {
			return true
		}
	}
	return false
}

// Status returns the one-line status message describing the selection.
func (s *Selection) Status() string { return s.status }

// Boxes returns the overlay rectangles of the selected nodes.
func (s *Selection) Boxes() []SelectionBox { return s.boxes }

// --- Picking ---

// Pick returns the topmost pickable node under the screen point p. The
// root's children are walked back to front; open groups are descended
// into, closed groups are tested as a whole. Returns nil when nothing
// pickable is hit.
func (s *Selection) Pick(p Vec2) *SceneNode {
	return s.pickIn(s.tree.root, p)
}

func (s *Selection) pickIn(group *SceneNode, p Vec2) *SceneNode {
	type frame struct {
		group *SceneNode
		next  int // index of the next child to test, counting down
	}
	stack := []frame{{group, len(group.children) - 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.group.children[top.next]
		top.next--
		if !child.IsPickable() {
			continue
		}
		if child.IsGroup() && !child.IsClosed() {
			stack = append(stack, frame{child, len(child.children) - 1})
			continue
		}
		if s.tree.containsScreenPoint(child, p) {
			return child
		}
	}
	return nil
}

// ResolveBestPick substitutes the outermost closed group containing n, so a
// member of a closed group is never returned on its own. Returns nil for nil.
func (s *Selection) ResolveBestPick(n *SceneNode) *SceneNode {
	if n == nil {
		return nil
	}
	best := n
	for p := s.tree.Parent(n); p != nil; p = s.tree.Parent(p) {
		if p.IsClosed() {
			best = p
		}
	}
	return best
}

// PickBest is ResolveBestPick(Pick(p)).
func (s *Selection) PickBest(p Vec2) *SceneNode {
	return s.ResolveBestPick(s.Pick(p))
}

// IsPointingToSelection reports whether a press at p should drag the
// current selection: the best pick is selected, or p lies inside a
// selected group's box.
func (s *Selection) IsPointingToSelection(p Vec2) bool {
	if s.IsEmpty() {
		return false
	}
	if n := s.PickBest(p); n != nil {
		return s.Contains(n)
	}
	for _, b := range s.boxes {
		if n := s.tree.Lookup(b.NodeID); n != nil && n.IsGroup() && b.Bounds.Contains(p.X, p.Y) {
			return true
		}
	}
	return false
}

// --- Mutation ---

// SetSelection replaces the selection. Nil, detached and duplicate nodes
// and the root are dropped; order is preserved. Exactly one change notification fires.
func (s *Selection) SetSelection(nodes []*SceneNode) {
	seen := make(map[string]bool, len(nodes))
	next := make([]*SceneNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || n == s.tree.root || seen[n.id] || !s.tree.Contains(n) {
			continue
		}
		seen[n.id] = true
		next = append(next, n)
	}
	s.nodes = next
	s.Refresh()
	s.changed.fire(s.Nodes())
}

// SetSelectionIDs selects the live nodes with the given ids. Unknown ids
// are skipped.
func (s *Selection) SetSelectionIDs(ids []string) {
	nodes := make([]*SceneNode, 0, len(ids))
	for _, id := range ids {
		if n := s.tree.Lookup(id); n != nil {
			nodes = append(nodes, n)
		}
	}
	s.SetSelection(nodes)
}

// HandleClick applies a click at screen point p. Shift toggles the picked
// node; the shortcut modifier adds it; a plain click on an already selected
// node keeps the selection so it can still be dragged; a click on empty
// space clears the selection.
func (s *Selection) HandleClick(p Vec2, mods KeyModifiers) {
	n := s.PickBest(p)
	switch {
	case n == nil:
		s.SetSelection(nil)
	case mods.Shift():
		if s.Contains(n) {
			s.SetSelection(without(s.nodes, n))
		} else {
			s.SetSelection(append(s.Nodes(), n))
		}
	case mods.Shortcut():
		if !s.Contains(n) {
			s.SetSelection(append(s.Nodes(), n))
		}
	case s.Contains(n):
		// Keep the selection as is.
	default:
		s.SetSelection([]*SceneNode{n})
	}
}

// SelectAll selects every pickable child of the root.
func (s *Selection) SelectAll() {
	var nodes []*SceneNode
	for _, c := range s.tree.root.children {
		if c.IsPickable() {
			nodes = append(nodes, c)
		}
	}
	s.SetSelection(nodes)
}

// Remove drops the given nodes from the selection.
func (s *Selection) Remove(nodes ...*SceneNode) {
	next := s.Nodes()
	for _, n := range nodes {
		next = without(next, n)
	}
	s.SetSelection(next)
}

// Abort cancels any box gesture and clears the selection.
func (s *Selection) Abort() {
	s.CancelBox()
	s.SetSelection(nil)
}

func without(nodes []*SceneNode, n *SceneNode) []*SceneNode {
	out := make([]*SceneNode, 0, len(nodes))
	for _, c := range nodes {
		if c.id != n.id {
			out = append(out, c)
		}
	}
	return out
}

// Filtered returns the selection with every node removed whose ancestor is
// also selected, sorted by display order. Batch operations work on this set.
func (s *Selection) Filtered() []*SceneNode {
	return FilterAncestors(s.tree, s.nodes)
}

// FilterAncestors removes nodes that have an ancestor in the same set and
// sorts the rest by display order.
func FilterAncestors(tree *SceneTree, nodes []*SceneNode) []*SceneNode {
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n.id] = true
	}
	var out []*SceneNode
	for _, n := range nodes {
		covered := false
		for p := tree.Parent(n); p != nil; p = tree.Parent(p) {
			if in[p.id] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	sortByDisplayOrder(tree, out)
	return out
}

func sortByDisplayOrder(tree *SceneTree, nodes []*SceneNode) {
	order := tree.DisplayOrder()
	sort.SliceStable(nodes, func(i, j int) bool {
		return order[nodes[i].id] < order[nodes[j].id]
	})
}

// --- Box selection ---

// BeginBox starts a box-selection gesture at screen point p.
func (s *Selection) BeginBox(p Vec2) {
	s.boxActive = true
	s.boxStart = p
	s.boxEnd = p
}

// UpdateBox moves the free corner of the box to p.
func (s *Selection) UpdateBox(p Vec2) {
	if s.boxActive {
		s.boxEnd = p
	}
}

// BoxRect returns the current box in screen space.
func (s *Selection) BoxRect() (Rect, bool) {
	if !s.boxActive {
		return Rect{}, false
	}
	return RectFromPoints(s.boxStart, s.boxEnd), true
}

// CancelBox ends the gesture without changing the selection.
func (s *Selection) CancelBox() {
	s.boxActive = false
}

// EndBox ends the gesture and selects what the box covers. With Shift or
// the shortcut modifier the covered nodes are added to the selection.
func (s *Selection) EndBox(mods KeyModifiers) {
	r, ok := s.BoxRect()
	if !ok {
		return
	}
	s.boxActive = false
	s.SelectBox(r, mods)
}

// SelectBox selects every pickable leaf and closed group whose screen
// bounds lie entirely inside r. Open groups are never selected themselves,
// and members of closed groups are never selected individually.
func (s *Selection) SelectBox(r Rect, mods KeyModifiers) {
	var hits []*SceneNode
	s.tree.Walk(func(n *SceneNode) bool {
		if n == s.tree.root {
			return true
		}
		if !n.IsPickable() {
			return false
		}
		switch {
		case n.IsClosed():
			if b := s.tree.NodeScreenBounds(n); !b.IsEmpty() && r.ContainsRect(b) {
				hits = append(hits, n)
			}
			return false
		case n.IsGroup():
			return true
		default:
			if b := s.tree.ContentScreenBounds(n); !b.IsEmpty() && r.ContainsRect(b) {
				hits = append(hits, n)
			}
			return false
		}
	})
	if mods.Shift() || mods.Shortcut() {
		hits = append(s.Nodes(), hits...)
	}
	s.SetSelection(hits)
}

// --- Overlays ---

// Refresh re-resolves selected nodes by id after a rebuild and recomputes
// their overlay boxes. Nodes that no longer exist are dropped silently.
func (s *Selection) Refresh() {
	live := s.nodes[:0]
	for _, n := range s.nodes {
		if !s.tree.Contains(n) {
			n = s.tree.Lookup(n.id)
			if n == nil {
				continue
			}
		}
		live = append(live, n)
	}
	for i := len(live); i < len(s.nodes); i++ {
		s.nodes[i] = nil
	}
	s.nodes = live

	s.boxes = s.boxes[:0]
	for _, n := range s.nodes {
		s.boxes = append(s.boxes, SelectionBox{NodeID: n.id, Bounds: s.tree.SelectionBounds(n)})
	}
	s.updateStatus()
}

func (s *Selection) updateStatus() {
	switch len(s.nodes) {
	case 0:
		s.status = ""
	case 1:
		n := s.nodes[0]
		s.status = fmt.Sprintf("Selected %s '%s'", n.model.Kind, n.Name())
		if n.IsPrefabInstance() {
			s.status += " (prefab instance)"
		}
	default:
		s.status = fmt.Sprintf("%d objects selected", len(s.nodes))
	}
}
