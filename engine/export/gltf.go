// Package export writes the scene hierarchy as a glTF 2.0 document. Every
// scene node becomes a glTF node carrying its local matrix for the given
// animation state, so any glTF viewer reproduces the same global transforms.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/scene"
)

const Generator = "teapots"

// GLTF builds a document with one node per scene node, in tree index order,
// and a single scene rooted at the tree root.
func GLTF(tree *scene.Tree, state *animation.State) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	locals := scene.Locals(tree, state)
	doc.Nodes = make([]*gltf.Node, 0, tree.Len())
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(i)
		node := &gltf.Node{
			Name:   n.Name,
			Matrix: locals[i],
		}
		for _, c := range n.Children {
			node.Children = append(node.Children, uint32(c))
		}
		if n.Mesh != nil {
			node.Extras = map[string]interface{}{"mesh": n.Mesh.Name}
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	doc.Scenes[0].Name = "teapots"
	doc.Scenes[0].Nodes = []uint32{uint32(tree.Root().Index)}
	doc.Scenes[0].Extras = map[string]interface{}{
		"frame":    state.Frame,
		"rotation": state.Rotation,
		"flip":     state.Flip,
		"offset_x": state.OffsetX,
		"offset_y": state.OffsetY,
	}
	return doc
}

// WriteGLTF encodes doc as JSON glTF, or as GLB when binary is set.
func WriteGLTF(w io.Writer, doc *gltf.Document, binary bool) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode gltf")
	}
	return nil
}

// SaveFile writes doc to path; a .glb extension selects the binary container.
func SaveFile(path string, doc *gltf.Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %q", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	binary := strings.EqualFold(filepath.Ext(path), ".glb")
	if err := WriteGLTF(f, doc, binary); err != nil {
		f.Close()
		return errors.Wrapf(err, "%q", path)
	}
	return f.Close()
}
