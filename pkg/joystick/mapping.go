package joystick

import (
	"math"

	"github.com/robotalks/arcadecar/pkg/joystick/device"
	"github.com/robotalks/arcadecar/pkg/joystick/msgs"
	l1msgs "github.com/robotalks/arcadecar/pkg/l1/msgs"
)

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// Mapping translates joystick events into car input.
//
// Throttle keeps the raw axis sign: pushing the stick forward reports a
// negative value, which drives the car forward. Steering is inverted so
// pushing right turns right.
type Mapping struct {
	TurnAxes        []int
	ThrottleAxes    []int
	HandbrakeButton int
	// DeadZone is the normalized deflection below which an axis reads 0.
	DeadZone float64
}

// DefaultMapping matches common gamepads: left stick and D-pad.
func DefaultMapping() Mapping {
	return Mapping{
		TurnAxes:        []int{0, 6},
		ThrottleAxes:    []int{1, 7},
		HandbrakeButton: 0,
		DeadZone:        0.05,
	}
}

// Apply updates input with ev and reports whether input changed.
func (m Mapping) Apply(input *l1msgs.CarInput, ev device.Event) bool {
	prev := *input
	switch e := ev.(type) {
	case device.AxisEvent:
		val := m.normalize(e.Value())
		switch {
		case containsIndex(m.TurnAxes, e.Index()):
			input.Turn = float32(-val)
		case containsIndex(m.ThrottleAxes, e.Index()):
			input.Acceleration = float32(val)
		}
	case device.ButtonEvent:
		if e.Index() == m.HandbrakeButton {
			input.Handbrake = e.Pressed()
		}
	}
	return prev != *input
}

// Message describes the mapping in status reports.
func (m Mapping) Message() *msgs.JoystickMapping {
	return &msgs.JoystickMapping{
		TurnAxes:        indices(m.TurnAxes),
		ThrottleAxes:    indices(m.ThrottleAxes),
		HandbrakeButton: uint32(m.HandbrakeButton),
		DeadZone:        m.DeadZone,
	}
}

func indices(in []int) []uint32 {
	out := make([]uint32, len(in))
	for n, i := range in {
		out[n] = uint32(i)
	}
	return out
}

func (m Mapping) normalize(raw int) float64 {
	val := float64(raw) / AxisMax
	if math.Abs(val) < m.DeadZone {
		return 0
	}
	return math.Max(-1, math.Min(1, val))
}

func containsIndex(indices []int, index int) bool {
	for _, i := range indices {
		if i == index {
			return true
		}
	}
	return false
}
