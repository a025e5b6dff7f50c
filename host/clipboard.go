package host

import (
	"fmt"

	"golang.design/x/clipboard"
)

// SystemClipboard is a sceneedit.Clipboard backed by the operating system
// clipboard.
type SystemClipboard struct{}

// NewSystemClipboard initializes access to the system clipboard. It fails
// on platforms without one (e.g. headless Linux without X11).
func NewSystemClipboard() (*SystemClipboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("host: init clipboard: %w", err)
	}
	return &SystemClipboard{}, nil
}

// Read returns the text on the clipboard.
func (SystemClipboard) Read() []byte {
	return clipboard.Read(clipboard.FmtText)
}

// Write replaces the clipboard text.
func (SystemClipboard) Write(data []byte) {
	clipboard.Write(clipboard.FmtText, data)
}
