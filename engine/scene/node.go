package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

// Node is one instance in the hierarchy. Indices refer to positions in the
// owning Tree.
type Node struct {
	Index    int
	Name     string
	Parent   int
	Children []int
	Rule     Rule
	Mesh     *metadata.Mesh
}

func (n *Node) IsRoot() bool {
	return n.Parent < 0
}

// Tree owns a fixed set of nodes. Node 0 is the root and every parent is
// stored before its children. The shape cannot change once built.
type Tree struct {
	nodes []*Node
	names map[string]int
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Root() *Node {
	return t.nodes[0]
}

func (t *Tree) Node(index int) *Node {
	return t.nodes[index]
}

// Find returns the node with the given name, or nil.
func (t *Tree) Find(name string) *Node {
	i, ok := t.names[name]
	if !ok {
		return nil
	}
	return t.nodes[i]
}

// Builder assembles a Tree. The first error sticks and is reported by Build.
type Builder struct {
	tree *Tree
	err  error
}

func NewBuilder() *Builder {
	return &Builder{tree: &Tree{names: make(map[string]int)}}
}

func (b *Builder) Root(name string, rule Rule, mesh *metadata.Mesh) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.tree.nodes) != 0 {
		b.err = errors.Errorf("scene: root already set, cannot add %q as a second root", name)
		return b
	}
	b.add(name, -1, rule, mesh)
	return b
}

func (b *Builder) Child(parent, name string, rule Rule, mesh *metadata.Mesh) *Builder {
	if b.err != nil {
		return b
	}
	p, ok := b.tree.names[parent]
	if !ok {
		b.err = errors.Errorf("scene: parent %q of %q does not exist", parent, name)
		return b
	}
	b.add(name, p, rule, mesh)
	return b
}

func (b *Builder) add(name string, parent int, rule Rule, mesh *metadata.Mesh) {
	if _, dup := b.tree.names[name]; dup {
		b.err = errors.Errorf("scene: duplicate node name %q", name)
		return
	}
	n := &Node{
		Index:  len(b.tree.nodes),
		Name:   name,
		Parent: parent,
		Rule:   rule,
		Mesh:   mesh,
	}
	b.tree.nodes = append(b.tree.nodes, n)
	b.tree.names[name] = n.Index
	if parent >= 0 {
		pn := b.tree.nodes[parent]
		pn.Children = append(pn.Children, n.Index)
	}
}

func (b *Builder) Build() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.tree.nodes) == 0 {
		return nil, errors.New("scene: tree has no root")
	}
	t := b.tree
	b.tree = nil
	b.err = errors.New("scene: builder already used")
	return t, nil
}

// MustBuild is Build for trees whose shape is fixed in code.
func (b *Builder) MustBuild() *Tree {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
