package animation

import (
	"fmt"
	"strings"

	kmath "github.com/spaghettifunk/teapots/engine/math"
)

// FlipMode selects how the flip angle turns around at its bound.
type FlipMode uint8

const (
	// FlipClamp steps, clamps to the bound and reverses there. The angle never
	// leaves [-FlipBound, FlipBound].
	FlipClamp FlipMode = iota
	// FlipOvershoot reverses once the angle has reached the upper bound or
	// dropped below the lower one, then steps. The angle may pass the bound by
	// one increment.
	FlipOvershoot
)

func (m FlipMode) String() string {
	switch m {
	case FlipClamp:
		return "clamp"
	case FlipOvershoot:
		return "overshoot"
	}
	return "unknown"
}

func ParseFlipMode(s string) (FlipMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return FlipClamp, nil
	case "overshoot":
		return FlipOvershoot, nil
	}
	return FlipClamp, fmt.Errorf("unknown flip mode %q", s)
}

// Settings are the per-frame increments of the animation. Angles are degrees.
type Settings struct {
	RotationStep  float64
	FlipStep      float64
	FlipBound     float64
	FlipMode      FlipMode
	SpinStep      float64
	TranslateStep float64
}

func DefaultSettings() Settings {
	return Settings{
		RotationStep:  0.08,
		FlipStep:      0.08,
		FlipBound:     40,
		FlipMode:      FlipClamp,
		SpinStep:      0,
		TranslateStep: 0.5,
	}
}

// State is the mutable animation state read by the scene evaluator. It is
// owned by the frame loop; input reaches it only through Apply.
type State struct {
	// Main rotation angle in [0, 360).
	Rotation float64 `json:"rotation" yaml:"rotation"`
	// Oscillating flip angle.
	Flip float64 `json:"flip" yaml:"flip"`
	// FlipRising is true while Flip increases.
	FlipRising bool `json:"flip_rising" yaml:"flip_rising"`
	// Second independent rotation, wrapped like Rotation.
	Spin float64 `json:"spin" yaml:"spin"`
	// Keyboard driven translation offsets, unbounded.
	OffsetX float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
	// Number of Update calls so far.
	Frame uint64 `json:"frame" yaml:"frame"`
}

func NewState() *State {
	return &State{FlipRising: true}
}

// Update advances the state by one frame.
func (s *State) Update(cfg Settings) {
	s.Rotation = kmath.WrapDegrees(s.Rotation + cfg.RotationStep)
	s.Spin = kmath.WrapDegrees(s.Spin + cfg.SpinStep)

	switch cfg.FlipMode {
	case FlipOvershoot:
		if s.Flip >= cfg.FlipBound || s.Flip < -cfg.FlipBound {
			s.FlipRising = !s.FlipRising
		}
		s.Flip += s.flipDelta(cfg.FlipStep)
	default:
		s.Flip = kmath.Clamp(s.Flip+s.flipDelta(cfg.FlipStep), -cfg.FlipBound, cfg.FlipBound)
		if s.Flip >= cfg.FlipBound {
			s.FlipRising = false
		} else if s.Flip <= -cfg.FlipBound {
			s.FlipRising = true
		}
	}

	s.Frame++
}

func (s *State) flipDelta(step float64) float64 {
	if s.FlipRising {
		return step
	}
	return -step
}

// Snapshot returns a copy safe to hand to other goroutines.
func (s *State) Snapshot() State {
	return *s
}
