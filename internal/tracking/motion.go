package tracking

import (
	"fmt"
	"math"

	"truckmonitor/internal/model"
)

// Direction is the qualitative turn of a moving object.
type Direction string

const (
	TurningRight   Direction = "Turning Right"
	TurningLeft    Direction = "Turning Left"
	MovingStraight Direction = "Moving Straight"
)

// DefaultTurnThreshold is the angle in degrees beyond which motion counts as a turn.
const DefaultTurnThreshold = 10.0

// Motion is the movement between two consecutive sightings.
type Motion struct {
	Direction Direction
	Angle     float64
}

// String renders the annotation text, e.g. "Turning Right: 90.00°".
func (m Motion) String() string {
	return fmt.Sprintf("%s: %.2f°", m.Direction, m.Angle)
}

// TurnAngle returns the heading from prev to cur in degrees, within (-180, 180].
func TurnAngle(prev, cur model.Point) float64 {
	angle := math.Atan2(cur.Y-prev.Y, cur.X-prev.X) * 180 / math.Pi
	if angle <= -180 {
		angle += 360
	}
	return angle
}

// ClassifyTurn maps an angle onto a direction using a symmetric threshold.
func ClassifyTurn(angle, threshold float64) Direction {
	switch {
	case angle > threshold:
		return TurningRight
	case angle < -threshold:
		return TurningLeft
	default:
		return MovingStraight
	}
}

// Estimate computes the motion between two centers.
func Estimate(prev, cur model.Point, threshold float64) Motion {
	angle := TurnAngle(prev, cur)
	return Motion{Direction: ClassifyTurn(angle, threshold), Angle: angle}
}
