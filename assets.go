package sceneedit

// AssetRef points at an image, or at one frame of a spritesheet, inside a
// project's asset pack.
type AssetRef struct {
	ProjectID string `json:"projectId" yaml:"project_id"`
	Key       string `json:"key" yaml:"key"`
	Frame     string `json:"frame,omitempty" yaml:"frame,omitempty"`
}

// AssetKind classifies what an AssetRef resolves to.
type AssetKind uint8

const (
	AssetOther AssetKind = iota // anything that is not directly placeable as a texture
	AssetImage                  // a standalone image
	AssetFrame                  // one frame of a spritesheet / atlas
)

// AssetInfo is what the editor needs to know about a resolved asset.
type AssetInfo struct {
	Kind   AssetKind
	Width  float64
	Height float64
	// Sheet and Frame are set for AssetFrame: the owning sheet key and the
	// frame's rectangle inside the sheet.
	Sheet string
	Frame Rect
}

// AssetResolver turns asset references into sizes and kinds.
type AssetResolver interface {
	Resolve(ref AssetRef) (AssetInfo, bool)
}

type assetKey struct {
	project string
	key     string
}

// AssetRegistry is an in-memory AssetResolver holding standalone images and
// texture atlases per project.
type AssetRegistry struct {
	images  map[assetKey]Vec2
	atlases map[assetKey]*Atlas
}

// NewAssetRegistry returns an empty registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		images:  make(map[assetKey]Vec2),
		atlases: make(map[assetKey]*Atlas),
	}
}

// AddImage registers a standalone image of the given size.
func (r *AssetRegistry) AddImage(projectID, key string, width, height float64) {
	r.images[assetKey{projectID, key}] = Vec2{width, height}
}

// AddAtlas registers a parsed atlas under a sheet key.
func (r *AssetRegistry) AddAtlas(projectID, key string, atlas *Atlas) {
	r.atlases[assetKey{projectID, key}] = atlas
}

// Resolve implements AssetResolver.
func (r *AssetRegistry) Resolve(ref AssetRef) (AssetInfo, bool) {
	k := assetKey{ref.ProjectID, ref.Key}
	if ref.Frame != "" {
		atlas, ok := r.atlases[k]
		if !ok {
			return AssetInfo{}, false
		}
		f, ok := atlas.Frame(ref.Frame)
		if !ok {
			return AssetInfo{}, false
		}
		return AssetInfo{
			Kind:   AssetFrame,
			Width:  f.SourceW,
			Height: f.SourceH,
			Sheet:  ref.Key,
			Frame:  f.Rect,
		}, true
	}
	if size, ok := r.images[k]; ok {
		return AssetInfo{Kind: AssetImage, Width: size.X, Height: size.Y}, true
	}
	if _, ok := r.atlases[k]; ok {
		return AssetInfo{Kind: AssetOther}, true
	}
	return AssetInfo{}, false
}

// FrameRefs returns a reference to every frame of the atlas registered under
// key, sorted by frame name.
func (r *AssetRegistry) FrameRefs(projectID, key string) []AssetRef {
	atlas, ok := r.atlases[assetKey{projectID, key}]
	if !ok {
		return nil
	}
	names := atlas.FrameNames()
	refs := make([]AssetRef, len(names))
	for i, name := range names {
		refs[i] = AssetRef{ProjectID: projectID, Key: key, Frame: name}
	}
	return refs
}
