package arcade

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/robotalks/arcadecar/pkg/sim"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
)

// Tuning of the motor body.
const (
	BaseDamping      = 1.0
	HandbrakeDamping = 5.0

	Restitution = 0.2
	Density     = 2500.0
	Friction    = 1.0
)

// Car marks the entity the driver sees. It is positioned from its motor.
type Car struct{}

// Motor drives a car. It lives on the invisible physics body and refers
// to its car entity without owning it.
type Motor struct {
	car       ecs.Entity
	radius    float64
	speed     float64
	turnSpeed float64
}

// CarEntity is the handle of the associated car.
func (m Motor) CarEntity() ecs.Entity {
	return m.car
}

// Radius is half of the body size.
func (m Motor) Radius() float64 {
	return m.radius
}

// Speed is the maximum acceleration magnitude.
func (m Motor) Speed() float64 {
	return m.speed
}

// TurnSpeed is the maximum yaw rate in radians per second.
func (m Motor) TurnSpeed() float64 {
	return m.turnSpeed
}

// Input is the control state of a motor, written by input collaborators
// once per tick.
type Input struct {
	// Acceleration is the signed throttle, nominally in [-1, 1].
	Acceleration float64
	// Turn is the signed steering, nominally in [-1, 1].
	Turn      float64
	Handbrake bool
}

// Reset restores neutral input.
func (in *Input) Reset() {
	*in = Input{}
}

// IsNeutral indicates no control is applied.
func (in Input) IsNeutral() bool {
	return in == (Input{})
}

// Bundle holds all components of a motor body before spawning.
type Bundle struct {
	Motor        Motor
	Input        Input
	Transform    sim.Transform
	Acceleration physics.Acceleration
	Velocity     physics.Velocity
	Damping      physics.Damping
	RigidBody    physics.RigidBody
	Collider     physics.CollisionShape
	Material     physics.Material
}

// NewBundle creates the motor body for car. The body is a sphere of
// the given size raised so that it rests on position.
func NewBundle(car ecs.Entity, position mgl64.Vec3, size, speed, turnSpeed float64) Bundle {
	radius := size / 2
	position[1] += radius
	return Bundle{
		Motor: Motor{
			car:       car,
			radius:    radius,
			speed:     speed,
			turnSpeed: turnSpeed,
		},
		Transform: sim.TransformAt(position),
		Damping:   physics.DampingFromLinear(BaseDamping),
		RigidBody: physics.Dynamic,
		Collider:  physics.Sphere(radius),
		Material: physics.Material{
			Restitution: Restitution,
			Density:     Density,
			Friction:    Friction,
		},
	}
}

// Spawn creates the motor body entity in w.
func (b Bundle) Spawn(w *ecs.World) ecs.Entity {
	mapper := ecs.NewMap9[Motor, Input, sim.Transform,
		physics.Acceleration, physics.Velocity, physics.Damping,
		physics.RigidBody, physics.CollisionShape, physics.Material](w)
	return mapper.NewEntity(&b.Motor, &b.Input, &b.Transform,
		&b.Acceleration, &b.Velocity, &b.Damping,
		&b.RigidBody, &b.Collider, &b.Material)
}

// SpawnCar creates a car entity in w.
func SpawnCar(w *ecs.World, transform sim.Transform) ecs.Entity {
	return ecs.NewMap2[sim.Transform, Car](w).NewEntity(&transform, &Car{})
}
