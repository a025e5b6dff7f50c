package sceneedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewObjectIDHasPrefix(t *testing.T) {
	id := NewObjectID()
	assert.True(t, strings.HasPrefix(id, PrefixObject+"_"), id)
	assert.NoError(t, ValidateID(id, PrefixObject))
	assert.Error(t, ValidateID(id, PrefixOp))
	assert.Error(t, ValidateID("garbage", PrefixObject))
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewOpID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{"tree": true, "tree_1": true, "rock_3": true}
	assert.Equal(t, "bush", uniqueName("bush", used))
	assert.Equal(t, "tree_2", uniqueName("tree", used))
	assert.Equal(t, "tree_2", uniqueName("tree_1", used), "numeric suffix is replaced, not extended")
	assert.Equal(t, "rock_1", uniqueName("rock_3", used))
	assert.Equal(t, "object", uniqueName("", used))
}
