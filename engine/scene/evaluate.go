package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/animation"
	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

// LocalFunc computes a node's transform relative to its parent.
type LocalFunc func(n *Node) mgl32.Mat4

// VisitFunc receives each node together with its global transform.
type VisitFunc func(n *Node, global mgl32.Mat4)

// Walk visits the tree in pre-order, root first and children in insertion
// order. The root's global transform is its local transform; every other
// global is parentGlobal · local, computed after the parent's.
func Walk(t *Tree, local LocalFunc, visit VisitFunc) {
	if t == nil || t.Len() == 0 {
		return
	}
	globals := make([]mgl32.Mat4, t.Len())
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[i]
		l := local(n)
		if n.IsRoot() {
			globals[i] = l
		} else {
			globals[i] = kmath.Compose(globals[n.Parent], l)
		}
		visit(n, globals[i])

		for c := len(n.Children) - 1; c >= 0; c-- {
			stack = append(stack, n.Children[c])
		}
	}
}

// Evaluate produces one draw call per node in pre-order, using each node's
// rule against the given state. It only reads the state.
func Evaluate(t *Tree, state *animation.State) []*metadata.GeometryRenderData {
	calls := make([]*metadata.GeometryRenderData, 0, t.Len())
	Walk(t,
		func(n *Node) mgl32.Mat4 {
			return n.Rule.Local(state)
		},
		func(n *Node, global mgl32.Mat4) {
			calls = append(calls, &metadata.GeometryRenderData{
				UniqueID: uint32(n.Index),
				Name:     n.Name,
				Parent:   n.Parent,
				Model:    global,
				Mesh:     n.Mesh,
			})
		})
	return calls
}

// Locals returns each node's local transform, indexed like the tree.
func Locals(t *Tree, state *animation.State) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, t.Len())
	for i, n := range t.nodes {
		out[i] = n.Rule.Local(state)
	}
	return out
}
