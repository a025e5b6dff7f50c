package sceneedit

import (
	"fmt"
	"log/slog"
	"time"
)

// pkgLogger is a plain package variable (no atomic, sceneedit is single-threaded).
var pkgLogger *slog.Logger

// SetLogger replaces the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	pkgLogger = l
}

func logger() *slog.Logger {
	if pkgLogger == nil {
		return slog.Default()
	}
	return pkgLogger
}

// globalDebug enables the tree sanity checks below for every editor.
var globalDebug bool

// tickStats holds per-tick timing. Only populated when the editor is in
// debug mode.
type tickStats struct {
	tasksTime  time.Duration
	inputTime  time.Duration
	updateTime time.Duration
	taskCount  int
}

func (e *Editor) debugLog(stats tickStats) {
	if !e.debug {
		return
	}
	logger().Debug("sceneedit tick",
		"tasks", stats.taskCount,
		"tasks_time", stats.tasksTime,
		"input_time", stats.inputTime,
		"update_time", stats.updateTime,
		"total", stats.tasksTime+stats.inputTime+stats.updateTime)
}

// debugCheckDisposed panics when a disposed node is used in a tree operation.
func debugCheckDisposed(n *SceneNode, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sceneedit debug: %s on disposed node %q", op, n.id))
	}
}

const debugMaxTreeDepth = 32

func debugCheckTreeDepth(t *SceneTree, n *SceneNode) {
	depth := t.Depth(n)
	if depth > debugMaxTreeDepth {
		logger().Warn("sceneedit: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name())
	}
}

const debugMaxChildCount = 1000

func debugCheckChildCount(n *SceneNode) {
	if len(n.children) > debugMaxChildCount {
		logger().Warn("sceneedit: child count exceeds threshold",
			"node", n.Name(), "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
