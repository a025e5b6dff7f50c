package sceneedit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string   `json:"action"`
	Label  string   `json:"label,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	DY     float64  `json:"dy,omitempty"`
	Frames int      `json:"frames,omitempty"`
	Key    string   `json:"key,omitempty"`
	Mods   []string `json:"mods,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestMark is a snapshot recorded by a "mark" step.
type TestMark struct {
	Label     string
	Selection []string
	Zoom      ZoomState
	Status    string
}

// TestRunner sequences injected input across ticks for scripted editor
// tests. Attach it with Editor.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	marks     []TestMark
}

var keyNames = map[string]Key{
	"escape": KeyEscape, "delete": KeyDelete, "backspace": KeyBackspace,
	"left": KeyLeft, "right": KeyRight, "up": KeyUp, "down": KeyDown,
	"a": KeyA, "c": KeyC, "g": KeyG, "v": KeyV, "x": KeyX, "y": KeyY, "z": KeyZ, "f": KeyF,
	"1": KeyDigit1, "2": KeyDigit2, "3": KeyDigit3, "4": KeyDigit4,
	"5": KeyDigit5, "6": KeyDigit6, "7": KeyDigit7,
}

var modNames = map[string]KeyModifiers{
	"shift": ModShift, "ctrl": ModCtrl, "alt": ModAlt, "meta": ModMeta,
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "wait", "wheel", "mark", "focuslost":
		case "key":
			if _, ok := keyNames[strings.ToLower(st.Key)]; !ok {
				return nil, fmt.Errorf("parse test script: step %d: unknown key %q", i, st.Key)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if _, err := parseMods(st.Mods); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func parseMods(names []string) (KeyModifiers, error) {
	var mods KeyModifiers
	for _, n := range names {
		m, ok := modNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
		mods |= m
	}
	return mods, nil
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool { return r.done }

// Marks returns the snapshots recorded so far.
func (r *TestRunner) Marks() []TestMark { return r.marks }

// step advances the runner by one tick. Called from Editor.Update.
func (r *TestRunner) step(e *Editor) {
	if r.done {
		return
	}
	// Let queued input drain before the next step.
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	mods, _ := parseMods(st.Mods)
	e.SetInjectModifiers(mods)
	switch st.Action {
	case "click":
		e.InjectClick(st.X, st.Y)
	case "drag":
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		e.InjectWheel(st.X, st.Y, st.DY)
	case "key":
		e.InjectKey(keyNames[strings.ToLower(st.Key)])
	case "focuslost":
		e.InjectFocusLost()
	case "mark":
		r.marks = append(r.marks, TestMark{
			Label:     st.Label,
			Selection: e.selection.IDs(),
			Zoom:      e.zoom.State(),
			Status:    e.Status(),
		})
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}
	e.SetInjectModifiers(0)

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}
