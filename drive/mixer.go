package drive

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultTurnRatio is the inner wheel fraction while turning.
	DefaultTurnRatio = 0.6

	// vectors shorter than this are treated as a stop
	vectorDeadzone = 0.1
)

// Mixer translates drive commands and joystick vectors into per-wheel speeds.
type Mixer struct {
	TurnRatio float64
}

func (m Mixer) ratio() float64 {
	if m.TurnRatio <= 0 || m.TurnRatio > 1 {
		return DefaultTurnRatio
	}
	return m.TurnRatio
}

// Wheels computes the wheel speed pair for a validated command. Turns run the
// outer wheel at the commanded speed and the inner wheel at TurnRatio of it.
func (m Mixer) Wheels(cmd MotorCommand) (left, right uint8) {
	switch cmd.Direction {
	case Forward, Backward:
		return cmd.Speed, cmd.Speed
	case Left:
		return cmd.Speed, uint8(math.Round(float64(cmd.Speed) * m.ratio()))
	case Right:
		return uint8(math.Round(float64(cmd.Speed) * m.ratio())), cmd.Speed
	default:
		return 0, 0
	}
}

// Mix performs an arcade-style mix of a stick vector (x=turn, y=speed) into
// signed per-wheel ratios in [-1, 1].
func (m Mixer) Mix(v mgl64.Vec2) (left, right float64) {
	speed := clampf(v.Y(), -1, 1)
	turn := clampf(v.X(), -1, 1)

	left = clampf(speed+turn, -1, 1)
	right = clampf(speed-turn, -1, 1)
	return
}

// FromVector reduces a stick vector to the dominant-axis MotorCommand.
// Vectors inside the deadzone become a stop.
func (m Mixer) FromVector(v mgl64.Vec2) MotorCommand {
	if v.Len() < vectorDeadzone {
		return MotorCommand{Direction: Stop}
	}

	speed := clampf(v.Y(), -1, 1)
	turn := clampf(v.X(), -1, 1)

	if math.Abs(turn) > math.Abs(speed) {
		dir := Left
		if turn > 0 {
			dir = Right
		}
		return MotorCommand{Direction: dir, Speed: uint8(math.Round(math.Abs(turn) * MaxSpeed))}
	}

	dir := Forward
	if speed < 0 {
		dir = Backward
	}
	return MotorCommand{Direction: dir, Speed: uint8(math.Round(math.Abs(speed) * MaxSpeed))}
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
