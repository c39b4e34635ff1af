package arcade

import "github.com/robotalks/arcadecar/pkg/sim/physics"

// Handbrake snaps the body damping between the base and handbrake
// coefficients according to the input.
func (e *Engine) Handbrake() {
	query := e.handbrake.Query()
	for query.Next() {
		damping, input := query.Get()
		if input.Handbrake {
			*damping = physics.DampingFromLinear(HandbrakeDamping)
		} else {
			*damping = physics.DampingFromLinear(BaseDamping)
		}
	}
}
