package sceneedit

import "errors"

// Errors returned by editing commands. Each one is also reported to the
// user through the Editor's Messenger; the command leaves no partial state.
var (
	ErrCrossProjectDrop      = errors.New("sceneedit: asset belongs to another project")
	ErrPasteIntoSinglePrefab = errors.New("sceneedit: cannot paste several objects into a single-sprite prefab")
	ErrPrefabStructure       = errors.New("sceneedit: cannot change the structure of a prefab instance")
	ErrNothingSelected       = errors.New("sceneedit: nothing selected")
	ErrEmptyClipboard        = errors.New("sceneedit: clipboard holds no scene objects")
)

// ErrNotPublished marks a bridge error raised after the composite was
// already applied to the local document. The edit stands; only forwarding
// it elsewhere failed.
var ErrNotPublished = errors.New("sceneedit: applied locally but not published")

// Messenger shows modal messages to the user.
type Messenger interface {
	ShowError(title, message string)
}

// MessengerFunc adapts a function to Messenger.
type MessengerFunc func(title, message string)

// ShowError implements Messenger.
func (f MessengerFunc) ShowError(title, message string) { f(title, message) }

// logMessenger is the default Messenger: it logs instead of showing a dialog.
type logMessenger struct{}

func (logMessenger) ShowError(title, message string) {
	logger().Warn(message, "title", title)
}
