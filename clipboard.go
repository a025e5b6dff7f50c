package sceneedit

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// clipboardFormat tags clipboard text written by the editor so arbitrary
// text on the system clipboard is never mistaken for scene objects.
const clipboardFormat = "sceneedit/objects/v1"

// ClipboardItem is one copied object with its world position at copy time.
type ClipboardItem struct {
	Model *ObjectModel `yaml:"model"`
	Order int          `yaml:"order"`
	X     float64      `yaml:"x"`
	Y     float64      `yaml:"y"`
}

// ClipboardData is the payload of Copy and Cut.
type ClipboardData struct {
	Format    string          `yaml:"format"`
	ProjectID string          `yaml:"project_id"`
	Items     []ClipboardItem `yaml:"items"`
}

// Encode returns the YAML text placed on the clipboard.
func (d ClipboardData) Encode() ([]byte, error) {
	d.Format = clipboardFormat
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("sceneedit: encode clipboard: %w", err)
	}
	return out, nil
}

// DecodeClipboard parses clipboard text. Items that are not valid object
// copies are dropped and the rest are sorted by display order. It returns
// ErrEmptyClipboard when nothing usable remains.
func DecodeClipboard(data []byte) (ClipboardData, error) {
	var d ClipboardData
	if err := yaml.Unmarshal(data, &d); err != nil {
		return ClipboardData{}, fmt.Errorf("%w: %v", ErrEmptyClipboard, err)
	}
	if d.Format != clipboardFormat {
		return ClipboardData{}, ErrEmptyClipboard
	}
	d.Items = validItems(d.Items)
	if len(d.Items) == 0 {
		return ClipboardData{}, ErrEmptyClipboard
	}
	return d, nil
}

func validItems(items []ClipboardItem) []ClipboardItem {
	out := make([]ClipboardItem, 0, len(items))
	for _, it := range items {
		if it.Model == nil || it.Model.ID == "" || it.Model.Kind == "" {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
