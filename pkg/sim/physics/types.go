package physics

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// Context provides the simulation context.
type Context interface {
	fx.TimeSource
	fx.StepSource
	Context() context.Context
}

// Acceleration is the linear acceleration applied during the next
// integration pass.
type Acceleration struct {
	Linear mgl64.Vec3
}

// Velocity is the linear velocity of a body.
type Velocity struct {
	Linear mgl64.Vec3
}

// Damping is the coefficient of exponential linear velocity decay.
type Damping struct {
	Linear float64
}

// DampingFromLinear creates Damping with the linear coefficient.
func DampingFromLinear(linear float64) Damping {
	return Damping{Linear: linear}
}

// RigidBody is the kind of a body.
type RigidBody int

// Body kinds.
const (
	Dynamic RigidBody = iota
	Static
	Kinematic
)

// String implements fmt.Stringer.
func (b RigidBody) String() string {
	switch b {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	}
	return "unknown"
}

// ShapeKind enumerates collision shapes.
type ShapeKind int

// Shapes.
const (
	ShapeSphere ShapeKind = iota
)

// CollisionShape is the collision volume of a body.
type CollisionShape struct {
	Kind   ShapeKind
	Radius float64
}

// Sphere creates a sphere shape.
func Sphere(radius float64) CollisionShape {
	return CollisionShape{Kind: ShapeSphere, Radius: radius}
}

// Material is the contact material of a body.
type Material struct {
	Restitution float64
	Density     float64
	Friction    float64
}
