package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/animation"
	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

func animatedState(frames int) *animation.State {
	s := animation.NewState()
	cfg := animation.DefaultSettings()
	cfg.SpinStep = 0.3
	for i := 0; i < frames; i++ {
		s.Update(cfg)
	}
	s.OffsetX, s.OffsetY = 1.5, -2
	return s
}

func TestEvaluatePreOrder(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	calls := Evaluate(tree, animation.NewState())

	want := []string{
		NodeRoot, NodeCenter1, NodeCenter2,
		NodeLeft1, NodeLeft2, NodeLeft3,
		NodeRight1, NodeRight2, NodeRight3,
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d draw calls, want %d", len(calls), len(want))
	}
	for i, name := range want {
		if calls[i].Name != name {
			t.Fatalf("call %d = %q, want %q", i, calls[i].Name, name)
		}
		if calls[i].Mesh == nil || calls[i].Mesh.Name != metadata.TeapotMeshName {
			t.Fatalf("call %d has mesh %v", i, calls[i].Mesh)
		}
	}
	// Every parent is emitted before its child.
	seen := map[int]bool{}
	for _, c := range calls {
		if c.Parent >= 0 && !seen[c.Parent] {
			t.Fatalf("%s emitted before its parent", c.Name)
		}
		seen[int(c.UniqueID)] = true
	}
}

func TestRootAtRestIsPureTranslation(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	calls := Evaluate(tree, animation.NewState())

	root := calls[0].Model
	if !kmath.IsPureTranslation(root, kmath.K_FLOAT_EPSILON) {
		t.Fatalf("root at rest has a rotation block: %v", root)
	}
	if got := root.Col(3).Vec3(); got != (mgl32.Vec3{0, 0, -130}) {
		t.Fatalf("root translation = %v, want (0, 0, -130)", got)
	}
}

func TestRestPositions(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	calls := Evaluate(tree, animation.NewState())

	origins := map[string]mgl32.Vec3{}
	for _, c := range calls {
		origins[c.Name] = kmath.TransformPoint(c.Model, mgl32.Vec3{})
	}
	want := map[string]mgl32.Vec3{
		NodeCenter1: {0, 15, -130},
		NodeCenter2: {0, 30, -130},
		NodeLeft1:   {-10, 45, -130},
		NodeRight1:  {10, 45, -130},
	}
	for name, w := range want {
		if !origins[name].ApproxEqualThreshold(w, kmath.K_FLOAT_EPSILON) {
			t.Fatalf("%s origin = %v, want %v", name, origins[name], w)
		}
	}
	// The tilted branches climb away from the center line.
	if origins[NodeLeft2][0] >= origins[NodeLeft1][0] || origins[NodeRight2][0] <= origins[NodeRight1][0] {
		t.Fatalf("branches not tilted outwards: left %v/%v right %v/%v",
			origins[NodeLeft1], origins[NodeLeft2], origins[NodeRight1], origins[NodeRight2])
	}
}

func TestGlobalIsParentTimesLocal(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	state := animatedState(1234)

	calls := Evaluate(tree, state)
	locals := Locals(tree, state)
	globals := make(map[int]mgl32.Mat4, len(calls))
	for _, c := range calls {
		globals[int(c.UniqueID)] = c.Model
	}

	for _, c := range calls {
		i := int(c.UniqueID)
		want := locals[i]
		if c.Parent >= 0 {
			want = globals[c.Parent].Mul4(locals[i])
		}
		if c.Model != want {
			t.Fatalf("%s: global %v, want parent·local %v", c.Name, c.Model, want)
		}
	}
}

func TestChainMatchesSequentialApplication(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	state := animatedState(777)
	locals := Locals(tree, state)
	calls := Evaluate(tree, state)

	root := tree.Find(NodeRoot).Index
	c1 := tree.Find(NodeCenter1).Index
	c2 := tree.Find(NodeCenter2).Index

	p := mgl32.Vec3{3, -1, 2.5}
	viaGlobal := kmath.TransformPoint(calls[c2].Model, p)
	sequential := kmath.TransformPoint(locals[root],
		kmath.TransformPoint(locals[c1],
			kmath.TransformPoint(locals[c2], p)))
	if !viaGlobal.ApproxEqualThreshold(sequential, kmath.K_FLOAT_EPSILON) {
		t.Fatalf("center.2 global maps %v to %v, sequential locals give %v", p, viaGlobal, sequential)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	state := animatedState(4321)
	before := state.Snapshot()

	first := Evaluate(tree, state)
	second := Evaluate(tree, state)
	for i := range first {
		if first[i].Model != second[i].Model {
			t.Fatalf("%s differs between runs", first[i].Name)
		}
	}
	if state.Snapshot() != before {
		t.Fatalf("Evaluate mutated the state")
	}
}

func TestOffsetsMoveWholeTree(t *testing.T) {
	tree := NewTeapotTree(metadata.NewTeapotMesh())
	rest := Evaluate(tree, animation.NewState())

	moved := animation.NewState()
	moved.OffsetX, moved.OffsetY = 2, -3
	shifted := Evaluate(tree, moved)

	delta := mgl32.Vec3{2, -3, 0}
	for i := range rest {
		a := kmath.TransformPoint(rest[i].Model, mgl32.Vec3{})
		b := kmath.TransformPoint(shifted[i].Model, mgl32.Vec3{})
		if !b.Sub(a).ApproxEqualThreshold(delta, kmath.K_FLOAT_EPSILON) {
			t.Fatalf("%s moved by %v, want %v", rest[i].Name, b.Sub(a), delta)
		}
	}
}

func TestRuleAngleSources(t *testing.T) {
	s := animation.NewState()
	s.Rotation, s.Flip, s.Spin = 10, -20, 30

	tests := []struct {
		rule Rule
		want float64
	}{
		{Rule{Source: SourceNone, Offset: 55}, 55},
		{Rule{Source: SourceRotation, Scale: 6}, 60},
		{Rule{Source: SourceFlip, Scale: 1}, -20},
		{Rule{Source: SourceSpin, Scale: 1, Offset: -55}, -25},
	}
	for _, tt := range tests {
		if got := tt.rule.Angle(s); got != tt.want {
			t.Fatalf("%s angle = %v, want %v", tt.rule.Source, got, tt.want)
		}
	}
}

func TestWalkUsesGivenLocalFunc(t *testing.T) {
	mesh := metadata.NewTeapotMesh()
	tree := NewBuilder().
		Root("a", Rule{}, mesh).
		Child("a", "b", Rule{}, mesh).
		Child("a", "c", Rule{}, mesh).
		Child("b", "d", Rule{}, mesh).
		MustBuild()

	var order []string
	var heights []float32
	Walk(tree,
		func(*Node) mgl32.Mat4 { return mgl32.Translate3D(0, 1, 0) },
		func(n *Node, global mgl32.Mat4) {
			order = append(order, n.Name)
			heights = append(heights, global.Col(3)[1])
		})

	if got, want := order, []string{"a", "b", "d", "c"}; len(got) != 4 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] || got[3] != want[3] {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if heights[0] != 1 || heights[1] != 2 || heights[2] != 3 || heights[3] != 2 {
		t.Fatalf("heights = %v, want [1 2 3 2]", heights)
	}
}

func TestBuilderRejectsBadShapes(t *testing.T) {
	mesh := metadata.NewTeapotMesh()
	tests := map[string]*Builder{
		"empty":          NewBuilder(),
		"second root":    NewBuilder().Root("a", Rule{}, mesh).Root("b", Rule{}, mesh),
		"unknown parent": NewBuilder().Root("a", Rule{}, mesh).Child("x", "b", Rule{}, mesh),
		"duplicate name": NewBuilder().Root("a", Rule{}, mesh).Child("a", "a", Rule{}, mesh),
		"child first":    NewBuilder().Child("a", "b", Rule{}, mesh),
	}
	for name, b := range tests {
		if _, err := b.Build(); err == nil {
			t.Fatalf("%s: Build succeeded", name)
		}
	}

	b := NewBuilder().Root("a", Rule{}, mesh)
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("builder reused")
	}
}
