package main

import "github.com/phanxgames/sceneedit"

// sampleAtlas is a two-frame sheet in TexturePacker hash format.
const sampleAtlas = `{
  "frames": {
    "crate": {"frame": {"x": 0, "y": 0, "w": 48, "h": 48}, "sourceSize": {"w": 48, "h": 48}},
    "barrel": {"frame": {"x": 48, "y": 0, "w": 40, "h": 56}, "sourceSize": {"w": 40, "h": 56}}
  }
}`

func sampleAssets(project string) *sceneedit.AssetRegistry {
	reg := sceneedit.NewAssetRegistry()
	reg.AddImage(project, "tree.png", 96, 128)
	reg.AddImage(project, "rock.png", 64, 40)
	if atlas, err := sceneedit.LoadAtlas([]byte(sampleAtlas)); err == nil {
		reg.AddAtlas(project, "props", atlas)
	}
	return reg
}

func sprite(project, name, key, frame string, x, y float64) *sceneedit.ObjectModel {
	m := sceneedit.NewObjectModel(sceneedit.KindSprite, name)
	m.Texture = &sceneedit.AssetRef{ProjectID: project, Key: key, Frame: frame}
	m.X, m.Y = x, y
	return m
}

// sampleDocument builds a small level: loose sprites, an open group, a closed
// group and a label.
func sampleDocument(project string) *sceneedit.Document {
	doc := sceneedit.NewDocument(project)
	root := doc.Root

	root.Children = append(root.Children,
		sprite(project, "tree", "tree.png", "", 200, 260),
		sprite(project, "rock", "rock.png", "", 420, 380),
	)

	yard := sceneedit.NewGroupModel("yard")
	yard.X, yard.Y = 600, 200
	yard.Children = append(yard.Children,
		sprite(project, "crate", "props", "crate", 0, 0),
		sprite(project, "crate 2", "props", "crate", 60, 0),
	)

	cart := sceneedit.NewGroupModel("cart")
	cart.Closed = true
	cart.X, cart.Y = 300, 480
	cart.Children = append(cart.Children,
		sprite(project, "barrel", "props", "barrel", 0, 0),
		sprite(project, "barrel 2", "props", "barrel", 50, 0),
	)

	label := sceneedit.NewObjectModel(sceneedit.KindText, "title")
	label.Text = "Sample level"
	label.X, label.Y = 40, 40

	root.Children = append(root.Children, yard, cart, label)
	// Reload to index the hand-built tree.
	data, err := doc.Marshal()
	if err != nil {
		panic(err)
	}
	reloaded, err := sceneedit.LoadDocument(data)
	if err != nil {
		panic(err)
	}
	return reloaded
}
