package sceneedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trimmedAtlas = `{
  "frames": {
    "hero": {
      "frame": {"x": 10, "y": 20, "w": 30, "h": 40},
      "trimmed": true,
      "spriteSourceSize": {"x": 2, "y": 3, "w": 30, "h": 40},
      "sourceSize": {"w": 36, "h": 48}
    }
  }
}`

const multiPageAtlas = `{
  "textures": [
    {"image": "p0.png", "frames": {"a": {"frame": {"x": 0, "y": 0, "w": 8, "h": 8}}}},
    {"image": "p1.png", "frames": {"b": {"frame": {"x": 4, "y": 4, "w": 16, "h": 16}, "rotated": true}}}
  ]
}`

func TestLoadAtlas_HashFormat(t *testing.T) {
	a, err := LoadAtlas([]byte(trimmedAtlas))
	require.NoError(t, err)
	f, ok := a.Frame("hero")
	require.True(t, ok)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 30, Height: 40}, f.Rect)
	assert.Equal(t, 36.0, f.SourceW)
	assert.Equal(t, 48.0, f.SourceH)
	assert.Equal(t, 2.0, f.OffsetX)
	assert.Equal(t, 3.0, f.OffsetY)
}

func TestLoadAtlas_ArrayFormat(t *testing.T) {
	a, err := LoadAtlas([]byte(multiPageAtlas))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a.FrameNames())
	b, ok := a.Frame("b")
	require.True(t, ok)
	assert.Equal(t, 1, b.Page)
	assert.True(t, b.Rotated)
	assert.Equal(t, 16.0, b.SourceW, "source size falls back to the frame size")
}

func TestLoadAtlas_Errors(t *testing.T) {
	_, err := LoadAtlas([]byte(`not json`))
	assert.Error(t, err)
	_, err = LoadAtlas([]byte(`{"meta": {}}`))
	assert.Error(t, err)
}

func TestAssetRegistryResolve(t *testing.T) {
	reg := testAssets(t)

	info, ok := reg.Resolve(AssetRef{ProjectID: testProject, Key: "wide.png"})
	require.True(t, ok)
	assert.Equal(t, AssetImage, info.Kind)
	assert.Equal(t, 200.0, info.Width)

	info, ok = reg.Resolve(AssetRef{ProjectID: testProject, Key: "sheet", Frame: "b"})
	require.True(t, ok)
	assert.Equal(t, AssetFrame, info.Kind)
	assert.Equal(t, "sheet", info.Sheet)
	assert.Equal(t, 40.0, info.Frame.X)

	info, ok = reg.Resolve(AssetRef{ProjectID: testProject, Key: "sheet"})
	require.True(t, ok)
	assert.Equal(t, AssetOther, info.Kind, "a whole sheet is not placeable")

	_, ok = reg.Resolve(AssetRef{ProjectID: "other", Key: "box.png"})
	assert.False(t, ok)
	_, ok = reg.Resolve(AssetRef{ProjectID: testProject, Key: "sheet", Frame: "zzz"})
	assert.False(t, ok)
}

func TestAssetRegistryFrameRefs(t *testing.T) {
	reg := testAssets(t)
	refs := reg.FrameRefs(testProject, "sheet")
	require.Len(t, refs, 3)
	assert.Equal(t, "a", refs[0].Frame)
	assert.Equal(t, testProject, refs[2].ProjectID)
	assert.Nil(t, reg.FrameRefs(testProject, "missing"))
}
