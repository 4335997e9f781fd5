package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

const (
	// Distance of the whole hierarchy from the camera.
	RootDepth float32 = -130
	// Every link of a chain sits this far above its parent.
	LinkLength float32 = 15
	// Fixed tilt of the left (+) and right (-) branches about Z.
	BranchTilt float64 = 55
	// Lateral shift of the left (-) and right (+) branches.
	BranchSpread float32 = 10
	// The middle link of the left branch spins this much faster than the root.
	LeftSpinScale float64 = 6
)

// Node names of the demo hierarchy.
const (
	NodeRoot    = "root"
	NodeCenter1 = "center.1"
	NodeCenter2 = "center.2"
	NodeLeft1   = "left.1"
	NodeLeft2   = "left.2"
	NodeLeft3   = "left.3"
	NodeRight1  = "right.1"
	NodeRight2  = "right.2"
	NodeRight3  = "right.3"
)

// NewTeapotTree builds the fixed demo hierarchy. The center chain (root,
// center.1, center.2) carries two branches of three links each, tilted
// left and right, hanging off center.2.
func NewTeapotTree(mesh *metadata.Mesh) *Tree {
	up := mgl32.Vec3{0, LinkLength, 0}
	spinY := Rule{Axis: kmath.AxisY, Source: SourceSpin, Scale: 1, Translation: up}

	return NewBuilder().
		Root(NodeRoot, Rule{
			Axis:          kmath.AxisY,
			Source:        SourceRotation,
			Scale:         1,
			Translation:   mgl32.Vec3{0, 0, RootDepth},
			FollowOffsets: true,
		}, mesh).
		Child(NodeRoot, NodeCenter1, spinY, mesh).
		Child(NodeCenter1, NodeCenter2, Rule{Axis: kmath.AxisX, Source: SourceFlip, Scale: 1, Translation: up}, mesh).
		Child(NodeCenter2, NodeLeft1, Rule{
			Axis:        kmath.AxisZ,
			Offset:      BranchTilt,
			Translation: mgl32.Vec3{-BranchSpread, LinkLength, 0},
		}, mesh).
		Child(NodeLeft1, NodeLeft2, Rule{Axis: kmath.AxisY, Source: SourceRotation, Scale: LeftSpinScale, Translation: up}, mesh).
		Child(NodeLeft2, NodeLeft3, spinY, mesh).
		Child(NodeCenter2, NodeRight1, Rule{
			Axis:        kmath.AxisZ,
			Offset:      -BranchTilt,
			Translation: mgl32.Vec3{BranchSpread, LinkLength, 0},
		}, mesh).
		Child(NodeRight1, NodeRight2, spinY, mesh).
		Child(NodeRight2, NodeRight3, spinY, mesh).
		MustBuild()
}
