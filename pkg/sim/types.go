package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// Axes of the world frame. Y is up.
var (
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, -1}
)

// Transform is the translation and rotation of an entity in the world.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// TransformAt creates an unrotated Transform at the given translation.
func TransformAt(translation mgl64.Vec3) Transform {
	return Transform{Translation: translation, Rotation: mgl64.QuatIdent()}
}

// Forward is the facing direction, i.e. the local -Z axis in world frame.
func (t Transform) Forward() mgl64.Vec3 {
	return t.rotation().Rotate(AxisForward)
}

// Rotate applies rotation q in world frame on top of the current rotation.
func (t *Transform) Rotate(q mgl64.Quat) {
	t.Rotation = q.Mul(t.rotation()).Normalize()
}

// RotateY rotates about the world up axis by the given radians.
func (t *Transform) RotateY(radians float64) {
	t.Rotate(mgl64.QuatRotate(radians, AxisUp))
}

// Yaw is the heading about the up axis.
func (t Transform) Yaw() Angle {
	return YawOf(t.rotation())
}

// Pose projects the transform into a Pose.
func (t Transform) Pose() Pose {
	return Pose{Pos: PosFromVec(t.Translation), Yaw: t.Yaw()}
}

// rotation treats the zero quaternion as identity so zero-valued
// Transforms are usable.
func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// Size defines the cube size in 3D.
type Size struct {
	CX, CY, CZ float64
}

// Pos defines the position in 3D.
type Pos struct {
	X, Y, Z float64
}

// PosFromVec converts a vector to Pos.
func PosFromVec(v mgl64.Vec3) Pos {
	return Pos{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Vec converts Pos to a vector.
func (p Pos) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// Pose is a ground pose: position and heading.
type Pose struct {
	Pos
	Yaw Angle
}

// Object represents an object in the world.
type Object interface {
	fx.Named
}

// Positionable object reports its pose.
type Positionable interface {
	Pose() Pose
}

// Sized object has an outline size.
type Sized interface {
	OutlineSize() Size
}

// ObjectsChangeListener listens for object changes.
type ObjectsChangeListener interface {
	ObjectsChanged(fx.ControlContext, ...Object)
	ObjectsRemoved(fx.ControlContext, ...Object)
}

// ObjectsChangeSubscriber subscribes objects change notifications.
type ObjectsChangeSubscriber interface {
	SubscribeObjectsChange(ObjectsChangeListener)
}
