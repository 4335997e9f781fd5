package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/animation"
	kmath "github.com/spaghettifunk/teapots/engine/math"
)

// AngleSource names the animation parameter that drives a node's rotation.
type AngleSource uint8

const (
	// SourceNone keeps the rotation at the rule's fixed Offset.
	SourceNone AngleSource = iota
	SourceRotation
	SourceFlip
	SourceSpin
)

func (s AngleSource) String() string {
	switch s {
	case SourceNone:
		return "fixed"
	case SourceRotation:
		return "rotation"
	case SourceFlip:
		return "flip"
	case SourceSpin:
		return "spin"
	}
	return "unknown"
}

// Rule describes how a node's local transform is derived from the animation
// state: rotate about Axis by Offset + Scale*source, then translate.
type Rule struct {
	Axis   kmath.Axis
	Source AngleSource
	Scale  float64
	// Fixed rotation in degrees, added to the animated angle.
	Offset      float64
	Translation mgl32.Vec3
	// FollowOffsets adds the keyboard offsets to the X and Y translation.
	FollowOffsets bool
}

func (r Rule) Angle(state *animation.State) float64 {
	var v float64
	switch r.Source {
	case SourceRotation:
		v = state.Rotation
	case SourceFlip:
		v = state.Flip
	case SourceSpin:
		v = state.Spin
	}
	return r.Offset + r.Scale*v
}

func (r Rule) Transform(state *animation.State) kmath.Transform {
	t := kmath.Transform{
		Axis:        r.Axis,
		Degrees:     float32(r.Angle(state)),
		Translation: r.Translation,
	}
	if r.FollowOffsets {
		t.Translation = t.Translation.Add(mgl32.Vec3{float32(state.OffsetX), float32(state.OffsetY), 0})
	}
	return t
}

func (r Rule) Local(state *animation.State) mgl32.Mat4 {
	return r.Transform(state).Local()
}
