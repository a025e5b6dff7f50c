// Sceneedit opens a window with a small sample level, or the document named
// by SCENEEDIT_DOCUMENT, and lets you edit it with the mouse and keyboard.
//
// Drag to move, Shift-click to toggle selection, drag on empty space to box
// select, wheel to zoom, middle button or Alt-drag to pan. Keys 1-7 pick the
// handle set; Ctrl+G groups; Ctrl+C/X/V copy, cut and paste; Ctrl+Z undoes.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phanxgames/sceneedit"
	"github.com/phanxgames/sceneedit/host"
	"github.com/phanxgames/sceneedit/remote"
)

const windowTitle = "Scene Editor"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	sceneedit.SetLogger(logger)

	assets := sampleAssets(cfg.Project)
	doc, err := openDocument(cfg)
	if err != nil {
		log.Fatal(err)
	}

	opts := sceneedit.Options{
		Resolver: assets,
		EditMode: sceneedit.EditMove,
		Viewport: sceneedit.Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)},
	}
	if cb, err := host.NewSystemClipboard(); err != nil {
		slog.Warn("system clipboard unavailable, using an in-memory one", "error", err)
	} else {
		opts.Clipboard = cb
	}
	ed := sceneedit.NewEditor(doc, opts)
	ed.SetDebugMode(cfg.Debug)

	var hooks []func()

	if cfg.Settings != "" {
		hook, closeFn, err := watchSettings(ed, cfg.Settings)
		if err != nil {
			log.Fatal(err)
		}
		defer closeFn()
		hooks = append(hooks, hook)
	}

	if cfg.RemoteURL != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		b, err := remote.Dial(ctx, cfg.RemoteURL, doc.ProjectID, ed.Log())
		if err != nil {
			log.Fatal(err)
		}
		defer b.Close()
		ed.SetBridge(b)
		hooks = append(hooks, b.Drain)
	}

	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			log.Fatal(err)
		}
		runner, err := sceneedit.LoadTestScript(data)
		if err != nil {
			log.Fatal(err)
		}
		ed.SetTestRunner(runner)
	}

	if err := host.Run(ed, host.RunConfig{
		Title:   windowTitle,
		Width:   cfg.Width,
		Height:  cfg.Height,
		ShowFPS: cfg.ShowFPS,
		Hooks:   hooks,
	}); err != nil {
		log.Fatal(err)
	}
}

func openDocument(cfg *Config) (*sceneedit.Document, error) {
	if cfg.Document == "" {
		return sampleDocument(cfg.Project), nil
	}
	data, err := os.ReadFile(cfg.Document)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return sceneedit.LoadDocument(data)
}

// watchSettings loads the settings file into the editor and returns a tick
// hook applying later edits of it.
func watchSettings(ed *sceneedit.Editor, path string) (func(), func(), error) {
	s, err := sceneedit.LoadSettings(path)
	if err != nil {
		return nil, nil, err
	}
	ed.ApplySettings(s)

	w, err := sceneedit.WatchSettings(path)
	if err != nil {
		return nil, nil, err
	}
	hook := func() {
		for {
			select {
			case s := <-w.Updates:
				slog.Info("settings reloaded", "path", path)
				ed.ApplySettings(s)
			case err := <-w.Errors:
				slog.Warn("settings reload failed", "path", path, "error", err)
			default:
				return
			}
		}
	}
	return hook, func() { _ = w.Close() }, nil
}
