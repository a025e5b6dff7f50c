package sceneedit

import (
	"fmt"
	"math"
	"path"
	"strings"
)

// dropStagger is the per-item offset, in parent units, between objects
// dropped together that do not come from one spritesheet.
const dropStagger = 20.0

// ModelFactory builds the object model for one dropped asset. Returning nil
// skips the asset.
type ModelFactory func(ref AssetRef, info AssetInfo) *ObjectModel

// DefaultModelFactory creates a sprite for images and spritesheet frames
// and skips everything else.
func DefaultModelFactory(ref AssetRef, info AssetInfo) *ObjectModel {
	if info.Kind != AssetImage && info.Kind != AssetFrame {
		return nil
	}
	m := NewObjectModel(KindSprite, assetBaseName(ref))
	tex := ref
	m.Texture = &tex
	return m
}

func assetBaseName(ref AssetRef) string {
	name := ref.Key
	if ref.Frame != "" {
		name = ref.Frame
	}
	name = path.Base(name)
	if ext := path.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// CreateEngine turns drops, clipboard contents and commands on the
// selection into composites.
type CreateEngine struct {
	doc       *Document
	tree      *SceneTree
	selection *Selection
	zoom      *ZoomPan
	bridge    ModelBridge
	messenger Messenger

	pointer    Vec2
	hasPointer bool
}

// NewCreateEngine returns a create engine. A nil messenger logs messages.
func NewCreateEngine(doc *Document, tree *SceneTree, sel *Selection, zoom *ZoomPan, bridge ModelBridge, messenger Messenger) *CreateEngine {
	if messenger == nil {
		messenger = logMessenger{}
	}
	return &CreateEngine{doc: doc, tree: tree, selection: sel, zoom: zoom, bridge: bridge, messenger: messenger}
}

// SetPointer records the last known pointer position in screen space.
func (c *CreateEngine) SetPointer(p Vec2) {
	c.pointer = p
	c.hasPointer = true
}

// ClearPointer forgets the pointer, e.g. when it leaves the canvas.
func (c *CreateEngine) ClearPointer() { c.hasPointer = false }

// reject reports a user-input rejection and returns err.
func (c *CreateEngine) reject(title string, err error) error {
	msg := strings.TrimPrefix(err.Error(), "sceneedit: ")
	c.messenger.ShowError(title, msg)
	return err
}

// destinationParent returns the group new objects are added to: the sole
// object of a prefab document, else the group owning the selection, else
// the root. A selection inside a prefab instance falls back to the root.
func (c *CreateEngine) destinationParent() *SceneNode {
	if pr := c.doc.PrefabRoot(); pr != nil {
		if n := c.tree.Lookup(pr.ID); n != nil && n.IsGroup() {
			return n
		}
	}
	root := c.tree.Root()
	sel := c.selection.Filtered()
	if len(sel) == 0 {
		return root
	}
	owner := c.tree.Parent(sel[0])
	if owner == nil || owner.IsPrefabInstance() || c.tree.IsPrefabInstanceComponent(owner) {
		return root
	}
	return owner
}

// anchor returns the screen point pasted objects are placed at.
func (c *CreateEngine) anchor() Vec2 {
	if c.hasPointer {
		return c.pointer
	}
	return c.zoom.Viewport().Center()
}

func (c *CreateEngine) usedNames() map[string]bool {
	return c.doc.names()
}

// uniquify renames every model in m's subtree so no name collides with used,
// and records the new names.
func uniquify(m *ObjectModel, used map[string]bool) {
	m.Walk(func(o *ObjectModel) bool {
		o.EditorName = uniqueName(o.EditorName, used)
		used[o.EditorName] = true
		return true
	})
}

// --- Drop ---

// DropObjects adds one object per dropped asset at the screen point at,
// snapped to the step grid when stepping is enabled.
// Frames of a single spritesheet keep their layout from the sheet; other
// drops are staggered. In a single-sprite prefab an image drop replaces the
// texture of the existing sprite instead. All adds and the selection of the
// new objects are submitted as one composite.
func (c *CreateEngine) DropObjects(items []AssetRef, at Vec2, factory ModelFactory) error {
	if len(items) == 0 {
		return nil
	}
	for _, ref := range items {
		if ref.ProjectID != c.doc.ProjectID {
			return c.reject("Drop", ErrCrossProjectDrop)
		}
	}
	if factory == nil {
		factory = DefaultModelFactory
	}
	infos := make([]AssetInfo, len(items))
	for i, ref := range items {
		infos[i] = c.resolveAsset(ref)
	}

	if c.doc.SingleSpritePrefab {
		if kind := infos[0].Kind; kind == AssetImage || kind == AssetFrame {
			if lone := c.loneSprite(); lone != nil {
				return c.bridge.Submit(NewComposite("Change texture",
					ChangeTexture(lone.id, items[0]),
					PropertiesChanged(lone.id),
					Select(lone.id),
				))
			}
		}
	}

	offsets := dropOffsets(infos)
	parent := c.destinationParent()
	base := c.tree.WorldToLocal(parent, SnapPoint(c.tree.ScreenToWorld(at), c.doc.Settings))
	used := c.usedNames()

	comp := NewComposite("Drop")
	var ids []string
	for i, ref := range items {
		m := factory(ref, infos[i])
		if m == nil {
			continue
		}
		uniquify(m, used)
		pos := base.Add(offsets[i])
		comp.Add(AddNode(m, -1, pos.X, pos.Y, parent.id))
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	comp.Add(Select(ids...))
	if err := c.bridge.Submit(comp); err != nil {
		return fmt.Errorf("sceneedit: drop: %w", err)
	}
	return nil
}

// resolveAsset sizes ref through the tree's resolver. Refs the resolver
// does not know are placed as placeholder-sized images or frames, matching
// how nodes draw a missing texture.
func (c *CreateEngine) resolveAsset(ref AssetRef) AssetInfo {
	if res := c.tree.Resolver(); res != nil {
		if info, ok := res.Resolve(ref); ok {
			return info
		}
		logger().Warn("sceneedit: unresolved asset dropped as placeholder", "key", ref.Key, "frame", ref.Frame)
	}
	info := AssetInfo{Kind: AssetImage, Width: placeholderSize, Height: placeholderSize}
	if ref.Frame != "" {
		info.Kind = AssetFrame
	}
	return info
}

// loneSprite returns the only object of a single-sprite prefab.
func (c *CreateEngine) loneSprite() *SceneNode {
	root := c.tree.Root()
	if len(root.children) != 1 || root.children[0].IsGroup() {
		return nil
	}
	return root.children[0]
}

// isSheetDrop reports whether infos are two or more frames of one sheet.
func isSheetDrop(infos []AssetInfo) bool {
	if len(infos) < 2 {
		return false
	}
	for _, info := range infos {
		if info.Kind != AssetFrame || info.Sheet == "" || info.Sheet != infos[0].Sheet {
			return false
		}
	}
	return true
}

// dropOffsets returns each item's offset from the drop point. Frames of one
// sheet keep their position in the sheet relative to the top-left-most
// frame; anything else is staggered.
func dropOffsets(infos []AssetInfo) []Vec2 {
	out := make([]Vec2, len(infos))
	if !isSheetDrop(infos) {
		for i := range out {
			out[i] = Vec2{float64(i) * dropStagger, float64(i) * dropStagger}
		}
		return out
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, info := range infos {
		minX = math.Min(minX, info.Frame.X)
		minY = math.Min(minY, info.Frame.Y)
	}
	for i, info := range infos {
		out[i] = Vec2{info.Frame.X - minX, info.Frame.Y - minY}
	}
	return out
}

// --- Group ---

// MakeGroup moves the selected objects into a new group. Objects covered by
// a selected ancestor move with it. The group is created under the
// shallowest parent among the inputs, and the objects keep their display
// order and their world positions.
func (c *CreateEngine) MakeGroup() error {
	nodes := c.selection.Filtered()
	if len(nodes) == 0 {
		return ErrNothingSelected
	}
	for _, n := range nodes {
		if c.tree.IsPrefabInstanceComponent(n) {
			return c.reject("Group", ErrPrefabStructure)
		}
	}

	parent := c.tree.Parent(nodes[0])
	for _, n := range nodes[1:] {
		if p := c.tree.Parent(n); c.tree.Depth(p) < c.tree.Depth(parent) {
			parent = p
		}
	}

	// The group sits at the top-left of the objects' world bounds.
	var bounds Rect
	for _, n := range nodes {
		bounds = bounds.Union(transformRect(c.tree.WorldTransform(n), c.tree.LocalBounds(n)))
	}
	origin := c.tree.WorldToLocal(parent, bounds.Min())
	groupWorld := multiplyAffine(c.tree.WorldTransform(parent), [6]float64{1, 0, 0, 1, origin.X, origin.Y})
	toGroup := invertAffine(groupWorld)

	deleted := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		deleted[n.id] = true
	}
	index := -1
	if c.tree.Parent(nodes[0]) == parent {
		index = 0
		for _, sib := range parent.children {
			if sib == nodes[0] {
				break
			}
			if !deleted[sib.id] {
				index++
			}
		}
	}

	group := NewGroupModel(c.doc.UniqueName("group"))
	comp := NewComposite("Group")
	for _, n := range nodes {
		comp.Add(DeleteNode(n.id))
	}
	comp.Add(AddNode(group, index, origin.X, origin.Y, parent.id))
	for i, n := range nodes {
		local := applyPoint(toGroup, c.tree.WorldPosition(n))
		comp.Add(AddNode(n.model, i, local.X, local.Y, group.ID))
	}
	comp.Add(Select(group.ID))
	if err := c.bridge.Submit(comp); err != nil {
		return fmt.Errorf("sceneedit: make group: %w", err)
	}
	return nil
}

// --- Clipboard ---

// Copy returns the clipboard payload for the selected objects.
func (c *CreateEngine) Copy() (ClipboardData, error) {
	nodes := c.selection.Filtered()
	if len(nodes) == 0 {
		return ClipboardData{}, ErrNothingSelected
	}
	order := c.tree.DisplayOrder()
	data := ClipboardData{Format: clipboardFormat, ProjectID: c.doc.ProjectID}
	for _, n := range nodes {
		p := c.tree.WorldPosition(n)
		data.Items = append(data.Items, ClipboardItem{
			Model: n.model.Copy(true),
			Order: order[n.id],
			X:     p.X,
			Y:     p.Y,
		})
	}
	return data, nil
}

// Cut copies the selected objects and deletes them.
func (c *CreateEngine) Cut() (ClipboardData, error) {
	data, err := c.Copy()
	if err != nil {
		return ClipboardData{}, err
	}
	if err := c.DeleteSelection(); err != nil {
		return ClipboardData{}, err
	}
	return data, nil
}

// Paste adds copies of the clipboard objects with fresh ids and unique
// names. They are placed at the last known pointer position, or at the
// viewport centre, snapped to the step grid. The copies keep their layout
// relative to each other and go under the group owning the selection.
func (c *CreateEngine) Paste(data ClipboardData) error {
	items := validItems(data.Items)
	if len(items) == 0 {
		return ErrEmptyClipboard
	}
	if c.doc.SingleSpritePrefab && len(items) > 1 {
		return c.reject("Paste", ErrPasteIntoSinglePrefab)
	}

	parent := c.destinationParent()
	anchor := SnapPoint(c.tree.ScreenToWorld(c.anchor()), c.doc.Settings)
	minX, minY := math.Inf(1), math.Inf(1)
	for _, it := range items {
		minX = math.Min(minX, it.X)
		minY = math.Min(minY, it.Y)
	}
	used := c.usedNames()

	comp := NewComposite("Paste")
	ids := make([]string, 0, len(items))
	for _, it := range items {
		m := it.Model.Copy(false)
		uniquify(m, used)
		world := anchor.Add(Vec2{it.X - minX, it.Y - minY})
		local := c.tree.WorldToLocal(parent, world)
		comp.Add(AddNode(m, -1, local.X, local.Y, parent.id))
		ids = append(ids, m.ID)
	}
	comp.Add(Select(ids...))
	if err := c.bridge.Submit(comp); err != nil {
		return fmt.Errorf("sceneedit: paste: %w", err)
	}
	return nil
}

// --- Selection commands ---

// DeleteSelection deletes the selected objects and clears the selection.
func (c *CreateEngine) DeleteSelection() error {
	nodes := c.selection.Filtered()
	if len(nodes) == 0 {
		return ErrNothingSelected
	}
	for _, n := range nodes {
		if c.tree.IsPrefabInstanceComponent(n) {
			return c.reject("Delete", ErrPrefabStructure)
		}
	}
	comp := NewComposite("Delete")
	for _, n := range nodes {
		comp.Add(DeleteNode(n.id))
	}
	comp.Add(Select())
	if err := c.bridge.Submit(comp); err != nil {
		return fmt.Errorf("sceneedit: delete: %w", err)
	}
	return nil
}

// Nudge moves the selected objects by (dx, dy) world units. Consecutive
// nudges of the same objects merge into one undo step.
func (c *CreateEngine) Nudge(dx, dy float64) error {
	nodes := c.selection.Filtered()
	if len(nodes) == 0 {
		return ErrNothingSelected
	}
	comp := NewComposite("Nudge")
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		world := c.tree.WorldPosition(n).Add(Vec2{dx, dy})
		local := c.tree.WorldToParentLocal(n, world)
		comp.Add(UpdateLocation(n.id, local.X, local.Y, true))
		ids = append(ids, n.id)
	}
	comp.Add(PropertiesChanged(ids...))
	if err := c.bridge.Submit(comp); err != nil {
		return fmt.Errorf("sceneedit: nudge: %w", err)
	}
	return nil
}
