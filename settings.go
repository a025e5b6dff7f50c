package sceneedit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// EditorSettings are the per-document editing preferences.
type EditorSettings struct {
	SteppingEnabled bool    `json:"steppingEnabled" yaml:"stepping_enabled"`
	StepWidth       float64 `json:"stepWidth" yaml:"step_width"`
	StepHeight      float64 `json:"stepHeight" yaml:"step_height"`
}

// DefaultSettings returns stepping disabled with a 16x16 grid.
func DefaultSettings() EditorSettings {
	return EditorSettings{StepWidth: 16, StepHeight: 16}
}

// ParseSettings decodes YAML settings on top of the defaults.
func ParseSettings(data []byte) (EditorSettings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return EditorSettings{}, fmt.Errorf("sceneedit: parse settings: %w", err)
	}
	if s.StepWidth <= 0 || s.StepHeight <= 0 {
		return EditorSettings{}, fmt.Errorf("sceneedit: parse settings: step size must be positive, got %vx%v", s.StepWidth, s.StepHeight)
	}
	return s, nil
}

// LoadSettings reads YAML settings from path.
func LoadSettings(path string) (EditorSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EditorSettings{}, fmt.Errorf("sceneedit: read settings %s: %w", path, err)
	}
	return ParseSettings(data)
}

// SaveSettings writes s to path as YAML.
func SaveSettings(path string, s EditorSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("sceneedit: encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("sceneedit: write settings %s: %w", path, err)
	}
	return nil
}

const settingsDebounce = 100 * time.Millisecond

// SettingsWatcher reloads a settings file whenever it changes on disk.
// Reloaded settings are delivered on Updates; the editor applies them from
// its own tick, never from the watcher goroutine.
type SettingsWatcher struct {
	Updates chan EditorSettings
	Errors  chan error

	path    string
	watcher *fsnotify.Watcher
	closeCh chan struct{}
	once    sync.Once
}

// WatchSettings starts watching path. The containing directory is watched so
// editors that replace the file on save are handled.
func WatchSettings(path string) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sceneedit: watch settings: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("sceneedit: watch settings: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("sceneedit: watch settings: %w", err)
	}
	sw := &SettingsWatcher{
		Updates: make(chan EditorSettings, 4),
		Errors:  make(chan error, 1),
		path:    abs,
		watcher: w,
		closeCh: make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *SettingsWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *SettingsWatcher) run() {
	// Saves often arrive as several events; reload once they settle.
	reload := time.NewTimer(time.Hour)
	reload.Stop()
	defer reload.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			reload.Reset(settingsDebounce)
		case <-reload.C:
			s, err := LoadSettings(w.path)
			if err != nil {
				w.sendErr(err)
				continue
			}
			select {
			case w.Updates <- s:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *SettingsWatcher) sendErr(err error) {
	select {
	case w.Errors <- err:
	default:
		logger().Warn("settings watcher error dropped", "error", err)
	}
}
