package sceneedit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// AtlasFrame describes one named frame of a texture atlas.
type AtlasFrame struct {
	Page int
	// Rect is the frame's sub-rectangle within its atlas page.
	Rect Rect
	// SourceW and SourceH are the untrimmed sprite size as authored.
	SourceW, SourceH float64
	// OffsetX and OffsetY are the trim offsets inside the source size.
	OffsetX, OffsetY float64
	Rotated          bool
}

// Atlas maps frame names to their rectangles. Only geometry is kept; the
// editor never samples pixels.
type Atlas struct {
	frames map[string]AtlasFrame
}

// Frame returns the named frame.
func (a *Atlas) Frame(name string) (AtlasFrame, bool) {
	f, ok := a.frames[name]
	return f, ok
}

// FrameNames returns all frame names in sorted order.
func (a *Atlas) FrameNames() []string {
	names := make([]string, 0, len(a.frames))
	for name := range a.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAtlas parses TexturePacker JSON data. Supports both the hash format
// (single "frames" object) and the array format ("textures" array with
// per-page frame lists).
func LoadAtlas(jsonData []byte) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("sceneedit: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{frames: make(map[string]AtlasFrame)}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sceneedit: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, page int, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("sceneedit: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.frames[name] = toAtlasFrame(f, page)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("sceneedit: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.frames[name] = toAtlasFrame(f, i)
		}
	}
	return nil
}

func toAtlasFrame(f jsonFrame, page int) AtlasFrame {
	srcW, srcH := float64(f.SourceSize.W), float64(f.SourceSize.H)
	if srcW == 0 && srcH == 0 {
		srcW, srcH = float64(f.Frame.W), float64(f.Frame.H)
	}
	return AtlasFrame{
		Page:    page,
		Rect:    Rect{X: float64(f.Frame.X), Y: float64(f.Frame.Y), Width: float64(f.Frame.W), Height: float64(f.Frame.H)},
		SourceW: srcW,
		SourceH: srcH,
		OffsetX: float64(f.SpriteSourceSize.X),
		OffsetY: float64(f.SpriteSourceSize.Y),
		Rotated: f.Rotated,
	}
}
