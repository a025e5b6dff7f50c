package sceneedit

import (
	"fmt"
	"strconv"
	"strings"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixObject = "obj"
	PrefixOp     = "op"
)

func newID(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

// NewObjectID returns a fresh object model id.
func NewObjectID() string { return newID(PrefixObject) }

// NewOpID returns a fresh composite operation id.
func NewOpID() string { return newID(PrefixOp) }

// ValidateID checks that id parses as a typeid with the expected prefix.
func ValidateID(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("sceneedit: invalid id %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("sceneedit: expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// uniqueName returns base if unused, otherwise base followed by the lowest
// free numeric suffix ("sprite", "sprite_1", "sprite_2", ...). Any numeric
// suffix already on base is stripped first.
func uniqueName(base string, used map[string]bool) string {
	if base == "" {
		base = "object"
	}
	if !used[base] {
		return base
	}
	if i := strings.LastIndexByte(base, '_'); i > 0 {
		if _, err := strconv.Atoi(base[i+1:]); err == nil {
			base = base[:i]
		}
	}
	for n := 1; ; n++ {
		name := base + "_" + strconv.Itoa(n)
		if !used[name] {
			return name
		}
	}
}
