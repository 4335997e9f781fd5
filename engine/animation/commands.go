package animation

import "fmt"

// Direction is one of the four keyboard translation directions.
type Direction uint8

const (
	DecreaseX Direction = iota
	IncreaseX
	DecreaseY
	IncreaseY
)

var directionNames = [...]string{
	DecreaseX: "decrease_x",
	IncreaseX: "increase_x",
	DecreaseY: "decrease_y",
	IncreaseY: "increase_y",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Command is a pending change to the animation state produced by input.
type Command struct {
	Direction Direction
}

// Apply moves the matching offset by exactly step. Offsets are not clamped.
func (s *State) Apply(cmd Command, step float64) {
	switch cmd.Direction {
	case DecreaseX:
		s.OffsetX -= step
	case IncreaseX:
		s.OffsetX += step
	case DecreaseY:
		s.OffsetY -= step
	case IncreaseY:
		s.OffsetY += step
	}
}
