package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/scene"
)

func fixture() (*scene.Tree, *animation.State) {
	state := animation.NewState()
	settings := animation.DefaultSettings()
	for i := 0; i < 100; i++ {
		state.Update(settings)
	}
	state.OffsetX = 2.5
	return scene.NewTeapotTree(metadata.NewTeapotMesh()), state
}

func TestDocumentMirrorsTree(t *testing.T) {
	tree, state := fixture()
	doc := GLTF(tree, state)

	if len(doc.Nodes) != tree.Len() {
		t.Fatalf("expected %d nodes, got %d", tree.Len(), len(doc.Nodes))
	}
	if len(doc.Scenes) != 1 || len(doc.Scenes[0].Nodes) != 1 || doc.Scenes[0].Nodes[0] != 0 {
		t.Fatalf("expected a single scene rooted at node 0, got %+v", doc.Scenes)
	}
	locals := scene.Locals(tree, state)
	for i, node := range doc.Nodes {
		n := tree.Node(i)
		if node.Name != n.Name {
			t.Fatalf("node %d: expected name %q, got %q", i, n.Name, node.Name)
		}
		if len(node.Children) != len(n.Children) {
			t.Fatalf("node %q: expected %d children, got %d", n.Name, len(n.Children), len(node.Children))
		}
		for j, c := range n.Children {
			if node.Children[j] != uint32(c) {
				t.Fatalf("node %q: child %d mismatch", n.Name, j)
			}
		}
		if mgl32.Mat4(node.Matrix) != locals[i] {
			t.Fatalf("node %q: matrix is not the local transform", n.Name)
		}
	}
}

// Composing the exported locals down the hierarchy gives the evaluated globals.
func TestDocumentReproducesGlobals(t *testing.T) {
	tree, state := fixture()
	doc := GLTF(tree, state)

	globals := make([]mgl32.Mat4, len(doc.Nodes))
	var visit func(i uint32, parent mgl32.Mat4)
	visit = func(i uint32, parent mgl32.Mat4) {
		globals[i] = parent.Mul4(mgl32.Mat4(doc.Nodes[i].Matrix))
		for _, c := range doc.Nodes[i].Children {
			visit(c, globals[i])
		}
	}
	visit(doc.Scenes[0].Nodes[0], mgl32.Ident4())

	for _, g := range scene.Evaluate(tree, state) {
		if !globals[g.UniqueID].ApproxEqualThreshold(g.Model, 1e-4) {
			t.Fatalf("node %q: exported global differs from evaluation", g.Name)
		}
	}
}

func TestWriteAndDecode(t *testing.T) {
	tree, state := fixture()
	for _, binary := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteGLTF(&buf, GLTF(tree, state), binary); err != nil {
			t.Fatalf("binary=%v: write: %v", binary, err)
		}
		if binary && !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
			t.Fatalf("expected the GLB magic")
		}
		var doc gltf.Document
		if err := gltf.NewDecoder(&buf).Decode(&doc); err != nil {
			t.Fatalf("binary=%v: decode: %v", binary, err)
		}
		if len(doc.Nodes) != tree.Len() || doc.Nodes[0].Name != scene.NodeRoot {
			t.Fatalf("binary=%v: unexpected nodes %+v", binary, doc.Nodes)
		}
		if doc.Asset.Generator != Generator {
			t.Fatalf("binary=%v: expected generator %q, got %q", binary, Generator, doc.Asset.Generator)
		}
	}
}

func TestSaveFile(t *testing.T) {
	tree, state := fixture()
	for _, name := range []string{"scene.gltf", "scene.glb"} {
		path := filepath.Join(t.TempDir(), "out", name)
		if err := SaveFile(path, GLTF(tree, state)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		doc, err := gltf.Open(path)
		if err != nil {
			t.Fatalf("%s: open: %v", name, err)
		}
		if len(doc.Nodes) != tree.Len() {
			t.Fatalf("%s: expected %d nodes, got %d", name, tree.Len(), len(doc.Nodes))
		}
	}
}
