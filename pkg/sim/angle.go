package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Angle is the common representation of angle,
// supporting multiple units.
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(normalizeRadians(mgl64.DegToRad(d)))
}

// AngleFromRadians creates Angle from radians.
func AngleFromRadians(r float64) Angle {
	return Angle(normalizeRadians(r))
}

// YawOf extracts the heading about the up axis from a rotation.
// Zero yaw faces -Z, positive yaw turns towards -X.
func YawOf(q mgl64.Quat) Angle {
	f := q.Rotate(AxisForward)
	return AngleFromRadians(math.Atan2(-f.X(), -f.Z()))
}

// Add adds an Angle.
func (a Angle) Add(a1 Angle) Angle {
	return Angle(normalizeRadians(float64(a) + float64(a1)))
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return mgl64.RadToDeg(float64(a))
}

// Quat is the rotation about the up axis by this angle.
func (a Angle) Quat() mgl64.Quat {
	return mgl64.QuatRotate(float64(a), AxisUp)
}

func normalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r < -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
