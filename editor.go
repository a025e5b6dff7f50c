package sceneedit

import (
	"errors"
	"fmt"
	"time"
)

const defaultRevealDuration = 0.25 // seconds

// Clipboard stores copied objects as text.
type Clipboard interface {
	Read() []byte
	Write(data []byte)
}

// memClipboard is the Clipboard used when the host provides none.
type memClipboard struct {
	data []byte
}

func (c *memClipboard) Read() []byte      { return c.data }
func (c *memClipboard) Write(data []byte) { c.data = append(c.data[:0], data...) }

// Options configures an Editor. The zero value is usable.
type Options struct {
	// Resolver sizes sprites from their textures. Nil gives every textured
	// object the placeholder size.
	Resolver AssetResolver
	// Messenger shows rejected commands to the user. Nil logs them.
	Messenger Messenger
	// Clipboard backs Copy, Cut and Paste. Nil keeps an in-memory clipboard.
	Clipboard Clipboard
	// ModelFactory builds objects for dropped assets. Nil uses
	// DefaultModelFactory.
	ModelFactory ModelFactory
	// EditMode is the handle set shown for the selection. Zero shows none.
	EditMode EditMode
	// Viewport is the screen rectangle of the canvas.
	Viewport Rect
	// UndoLimit caps the undo history. Zero keeps the default.
	UndoLimit int
	// RevealDuration is the length in seconds of the animated reveal.
	// Negative reveals immediately; zero uses the default.
	RevealDuration float32
}

// Editor owns a document and every engine that edits it. All methods must
// be called from the UI goroutine; Update is the tick.
type Editor struct {
	opts Options

	doc    *Document
	log    *OperationLog
	bridge ModelBridge
	tree   *SceneTree
	tasks  TaskQueue

	zoom      *ZoomPan
	selection *Selection
	drag      *DragEngine
	handles   *HandleOverlay
	create    *CreateEngine
	router    *Router

	messenger Messenger
	clipboard Clipboard
	editMode  EditMode
	debug     bool

	rebuildPending bool

	injectQueue    []syntheticEvent
	injectMods     KeyModifiers
	injectedOnTick bool
	testRunner     *TestRunner

	selectionChanged  handlerRegistry[[]*SceneNode]
	propertiesRefresh handlerRegistry[[]string]
}

// NewEditor builds the scene tree for doc and wires the engines. Every
// composite goes through an OperationLog over doc; SetBridge can route it
// elsewhere first.
func NewEditor(doc *Document, opts Options) *Editor {
	if opts.Messenger == nil {
		opts.Messenger = logMessenger{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &memClipboard{}
	}
	if opts.ModelFactory == nil {
		opts.ModelFactory = DefaultModelFactory
	}
	switch {
	case opts.RevealDuration == 0:
		opts.RevealDuration = defaultRevealDuration
	case opts.RevealDuration < 0:
		opts.RevealDuration = 0
	}

	e := &Editor{
		opts:      opts,
		doc:       doc,
		log:       NewOperationLog(doc),
		messenger: opts.Messenger,
		clipboard: opts.Clipboard,
		editMode:  opts.EditMode,
	}
	if opts.UndoLimit != 0 {
		e.log.SetLimit(opts.UndoLimit)
	}
	e.bridge = e.log
	e.tree = NewSceneTree(doc.Root, opts.Resolver)
	e.zoom = NewZoomPan(e.tree)
	e.zoom.SetViewport(opts.Viewport)
	e.selection = NewSelection(e.tree)
	e.drag = NewDragEngine(e.tree, e.selection, e, e.Settings)
	e.handles = NewHandleOverlay(e.tree, e.selection, e, e.Settings)
	e.create = NewCreateEngine(doc, e.tree, e.selection, e.zoom, e, e.messenger)
	e.router = newRouter(e)

	e.log.OnChange(e.onModelChange)
	e.selection.OnChange(e.onSelectionChange)
	e.zoom.OnChange(func(ZoomState) { e.selection.Refresh() })

	e.selection.SetSelectionIDs(doc.Selection)
	return e
}

// Accessors.

func (e *Editor) Document() *Document { return e.doc }
func (e *Editor) Log() *OperationLog { return e.log }
func (e *Editor) Tree() *SceneTree { return e.tree }
func (e *Editor) Zoom() *ZoomPan { return e.zoom }
func (e *Editor) Selection() *Selection { return e.selection }
func (e *Editor) Drag() *DragEngine { return e.drag }
func (e *Editor) Handles() *HandleOverlay { return e.handles }
func (e *Editor) Create() *CreateEngine { return e.create }
func (e *Editor) Router() *Router { return e.router }
func (e *Editor) Tasks() *TaskQueue { return &e.tasks }
func (e *Editor) EditMode() EditMode { return e.editMode }
func (e *Editor) Settings() EditorSettings { return e.doc.Settings }
func (e *Editor) Status() string { return e.selection.Status() }
func (e *Editor) SetViewport(r Rect) { e.zoom.SetViewport(r) }
func (e *Editor) SetMessenger(m Messenger) { e.messenger = m; e.create.messenger = m }
func (e *Editor) SetTestRunner(r *TestRunner) { e.testRunner = r }
func (e *Editor) InjectedInputThisTick() bool { return e.injectedOnTick }
func (e *Editor) SetInjectModifiers(m KeyModifiers) { e.injectMods = m }

// Submit implements ModelBridge by forwarding to the current bridge.
// A bridge failure wrapping ErrNotPublished is shown to the user but not
// returned, since the local document already holds the edit.
func (e *Editor) Submit(c CompositeOperation) error {
	err := e.bridge.Submit(c)
	if errors.Is(err, ErrNotPublished) {
		logger().Warn("sceneedit: edit not published", "op", c.ID, "label", c.Label, "error", err)
		e.messenger.ShowError(c.Label, err.Error())
		return nil
	}
	return err
}

// SetBridge routes composites through b. b must eventually apply them to
// the editor's OperationLog, or change notifications will not arrive.
func (e *Editor) SetBridge(b ModelBridge) {
	if b == nil {
		b = e.log
	}
	e.bridge = b
}

// OnSelectionChanged registers a callback fired after every selection change.
func (e *Editor) OnSelectionChanged(fn func([]*SceneNode)) CallbackHandle {
	return e.selectionChanged.add(fn)
}

// OnPropertiesRefresh registers a callback fired when property views for
// the given ids should re-read their values.
func (e *Editor) OnPropertiesRefresh(fn func([]string)) CallbackHandle {
	return e.propertiesRefresh.add(fn)
}

// SetDebugMode enables tree sanity checks and per-tick timing logs.
func (e *Editor) SetDebugMode(enabled bool) {
	e.debug = enabled
	globalDebug = enabled
}

// ApplySettings replaces the editor settings. Settings are not part of the
// undo history.
func (e *Editor) ApplySettings(s EditorSettings) {
	e.doc.Settings = s
}

// SetEditMode switches the handle set shown over the selection.
func (e *Editor) SetEditMode(m EditMode) {
	if _, ok := handleFactories[m]; !ok && m != EditNone {
		panic(fmt.Sprintf("sceneedit: unknown edit mode %d", m))
	}
	e.editMode = m
	e.handles.EditSelection(m)
}

// Update is the UI tick. It runs the tasks posted since the last tick,
// advances animations and the test runner, processes one injected input
// event and keeps the handles glued to their nodes.
func (e *Editor) Update(dt float32) {
	var stats tickStats
	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}
	stats.taskCount = e.tasks.RunPending()
	if e.debug {
		stats.tasksTime = time.Since(t0)
		t0 = time.Now()
	}

	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	e.injectedOnTick = e.processInjectedInput()
	if e.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	e.zoom.update(dt)
	e.handles.Update()
	if e.debug {
		stats.updateTime = time.Since(t0)
		e.debugLog(stats)
	}
}

// onModelChange reacts to the operation log. Rebuilds never run inline:
// they are posted so the notification that triggered them finishes first.
func (e *Editor) onModelChange(ev ChangeEvent) {
	switch ev.Kind {
	case ChangeStructure:
		if !e.rebuildPending {
			e.rebuildPending = true
			e.tasks.Post(e.rebuild)
		}
	case ChangeProperties:
		if e.rebuildPending {
			return
		}
		for _, id := range ev.IDs {
			e.tree.Refresh(id)
		}
		e.selection.Refresh()
	case ChangeSelection:
		ids := ev.IDs
		e.tasks.Post(func() { e.selection.SetSelectionIDs(ids) })
	case ChangeRefresh:
		e.propertiesRefresh.fire(ev.IDs)
	}
}

func (e *Editor) rebuild() {
	e.rebuildPending = false
	e.router.Abort()
	e.tree.Rebuild(e.doc.Root)
	e.selection.Refresh()
	e.handles.Update()
}

func (e *Editor) onSelectionChange(nodes []*SceneNode) {
	e.doc.Selection = e.selection.IDs()
	e.handles.SyncSelection(e.editMode)
	e.selectionChanged.fire(nodes)
}

// report logs a failed command and shows it to the user. Rejections were
// already shown by the engine; an empty selection is not an error worth
// showing.
func (e *Editor) report(title string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrNothingSelected), errors.Is(err, ErrEmptyClipboard):
		logger().Debug("sceneedit: command skipped", "command", title, "reason", err)
	case isRejection(err):
		logger().Warn("sceneedit: command rejected", "command", title, "error", err)
	default:
		logger().Error("sceneedit: command failed", "command", title, "error", err)
		e.messenger.ShowError(title, err.Error())
	}
}

// --- Commands ---

// Undo reverts the last step. Nothing to undo is not an error.
func (e *Editor) Undo() error {
	e.router.Abort()
	_, err := e.log.Undo()
	return err
}

// Redo re-applies the last undone step.
func (e *Editor) Redo() error {
	e.router.Abort()
	_, err := e.log.Redo()
	return err
}

// Copy places the selected objects on the clipboard.
func (e *Editor) Copy() error {
	data, err := e.create.Copy()
	if err != nil {
		return err
	}
	return e.writeClipboard(data)
}

// Cut places the selected objects on the clipboard and deletes them.
func (e *Editor) Cut() error {
	data, err := e.create.Cut()
	if err != nil {
		return err
	}
	return e.writeClipboard(data)
}

func (e *Editor) writeClipboard(data ClipboardData) error {
	text, err := data.Encode()
	if err != nil {
		return err
	}
	e.clipboard.Write(text)
	return nil
}

// Paste adds the clipboard objects to the document.
func (e *Editor) Paste() error {
	data, err := DecodeClipboard(e.clipboard.Read())
	if err != nil {
		return err
	}
	return e.create.Paste(data)
}

// DropObjects adds objects for assets dropped at the screen point at.
func (e *Editor) DropObjects(items []AssetRef, at Vec2) error {
	return e.create.DropObjects(items, at, e.opts.ModelFactory)
}

// MakeGroup groups the selected objects.
func (e *Editor) MakeGroup() error { return e.create.MakeGroup() }

// Abort cancels the gesture in progress.
func (e *Editor) Abort() { e.router.Abort() }
