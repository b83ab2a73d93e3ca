package drive

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is the closed set of drive directions understood by the arbiter.
type Direction int

const (
	Stop Direction = iota
	Forward
	Backward
	Left
	Right
)

const (
	MinSpeed = 0
	MaxSpeed = 255

	// DefaultSpeed is used when a command arrives without a speed value.
	DefaultSpeed = 200
)

var directionNames = map[Direction]string{
	Stop:     "stop",
	Forward:  "forward",
	Backward: "backward",
	Left:     "left",
	Right:    "right",
}

func (d Direction) String() string {
	name, ok := directionNames[d]
	if !ok {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return name
}

// MarshalJSON emits the direction token rather than the enum value.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseDirection(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionTokens returns the accepted direction tokens in a stable order.
func DirectionTokens() []string {
	return []string{"forward", "backward", "left", "right", "stop"}
}

// InvalidDirectionError is returned when a direction token is not part of the
// accepted set. It never mutates motor state.
type InvalidDirectionError struct {
	Token string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid direction %q: must be one of %s",
		e.Token, strings.Join(DirectionTokens(), ", "))
}

// ParseDirection decodes a direction token, case-insensitively.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "stop":
		return Stop, nil
	default:
		return Stop, &InvalidDirectionError{Token: raw}
	}
}

// MotorCommand is a validated drive command ready for the arbiter.
type MotorCommand struct {
	Direction Direction
	Speed     uint8
}

// Validate normalizes a raw (direction, speed) pair into a MotorCommand.
// A nil speed falls back to defaultSpeed, out-of-range speeds are clamped
// rather than rejected and a stop always carries speed 0.
func Validate(rawDirection string, rawSpeed *int, defaultSpeed uint8) (MotorCommand, error) {
	dir, err := ParseDirection(rawDirection)
	if err != nil {
		return MotorCommand{}, err
	}

	speed := int(defaultSpeed)
	if rawSpeed != nil {
		speed = *rawSpeed
	}
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}

	if dir == Stop {
		speed = 0
	}

	return MotorCommand{Direction: dir, Speed: uint8(speed)}, nil
}
