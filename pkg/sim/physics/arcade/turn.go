package arcade

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/robotalks/arcadecar/pkg/sim/physics"
)

// TurnRampSpeed is the body speed from which turning has full authority.
// Below it the yaw rate scales linearly down to zero at rest.
const TurnRampSpeed = 10.0

// TurnRate computes the yaw rate (radians per second) of a motor moving
// at speed with the given steering input.
func TurnRate(turnSpeed, speed, turn float64) float64 {
	if math.Abs(speed) < TurnRampSpeed {
		turnSpeed *= speed / TurnRampSpeed
	}
	return turn * mgl64.Clamp(speed, -1, 1) * turnSpeed
}

// Turn rotates each car about the up axis according to the speed of its
// motor body and the steering input. The motor body itself never turns.
func (e *Engine) Turn(ctx physics.Context) Diagnostics {
	dt := ctx.Elapsed().Seconds()
	var diags Diagnostics
	query := e.turn.Query()
	for query.Next() {
		entity := query.Entity()
		if e.isCar(entity) {
			continue
		}
		motor, input, vel := query.Get()
		car, ok := e.carTransform(motor.car)
		if !ok {
			diags = diags.add(ProcTurn, entity, motor.car)
			continue
		}
		car.RotateY(TurnRate(motor.turnSpeed, vel.Linear.Len(), input.Turn) * dt)
	}
	return diags
}
