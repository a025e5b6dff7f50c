// Package sceneedit is the interactive editing core of a 2D level and
// sprite editor.
//
// It keeps a retained tree of scene nodes (sprites, groups, text and tile
// sprites) in step with a serializable [Document], and edits that tree with
// the mouse and keyboard: hit testing, multi-selection, nested and closed
// groups, transform handles, zoom and pan, and drop/paste/group commands.
// Every edit is expressed as a [CompositeOperation] and applied through a
// [ModelBridge], normally the [OperationLog], which provides undo and redo.
//
// The package is pure Go and single-threaded. A host (see the host
// subpackage for an Ebitengine one) polls input into the [Router] and calls
// [Editor.Update] once per tick:
//
//	doc := sceneedit.NewDocument("my-project")
//	ed := sceneedit.NewEditor(doc, sceneedit.Options{
//		Resolver: registry,
//		Viewport: sceneedit.Rect{Width: 1280, Height: 720},
//		EditMode: sceneedit.EditMove,
//	})
//
//	// each tick
//	ed.Update(dt)
//	ed.Router().ProcessPointer(cursor, pressed, button, mods)
//
// # Spaces
//
// A node's model X/Y are in its parent's local space. World space is the
// space the root lives in. Screen space is world space after the zoom/pan
// view transform, which only [ZoomPan] writes. [SceneTree] converts between
// them.
//
// # Tree ownership
//
// Groups own their children; nodes have no parent pointer. The tree keeps a
// derived id-to-parent map instead. Structural changes rebuild the tree on
// the next tick through the [TaskQueue], and engines re-resolve the nodes
// they hold by id afterwards. Every walk uses an explicit stack, so nesting
// depth is bounded only by memory.
//
// # Selection rules
//
// Picking walks back to front, descends into open groups only and returns
// the outermost closed group containing the hit. Box selection selects
// leaves and closed groups whose bounds lie fully inside the box.
//
// # Commands and errors
//
// Commands that the user cannot perform in the current document (dropping
// another project's asset, pasting several objects into a single-sprite
// prefab, restructuring a prefab instance) report through [Messenger] and
// return a sentinel error such as [ErrCrossProjectDrop], leaving the
// document untouched. Contract violations panic.
package sceneedit
