package see

import (
	"strings"

	"github.com/robotalks/arcadecar/pkg/sim"
)

// VisibleObject is an object which can be visualized.
type VisibleObject interface {
	sim.Object
	sim.Sized
	sim.Positionable
}

// Object is an object as the see frontend draws it.
type Object map[string]interface{}

// Pos is a position on the see canvas.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObjectMapper maps VisibleObject into Object data model.
type ObjectMapper interface {
	MapObject(VisibleObject) []Object
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(VisibleObject) []Object

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(obj VisibleObject) []Object {
	return f(obj)
}

// Message is the message for see.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropRotate = "rotate"
)

// ObjectID converts an object name to a DOM friendly ID.
func ObjectID(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// NewObject creates Object.
func NewObject(typ, id string) Object {
	o := make(Object)
	o[PropID] = id
	o[PropType] = typ
	return o
}

// ObjectFrom constructs an object from VisibleObject seen from above:
// world X maps to x, world Z maps to y, and the rotation is the yaw.
func ObjectFrom(typ string, vo VisibleObject) Object {
	size, pose := vo.OutlineSize(), vo.Pose()
	rad := size.CX
	if size.CZ > rad {
		rad = size.CZ
	}
	return NewObject(typ, ObjectID(vo.Name())).
		At(pose.X, pose.Z).
		Radius(rad / 2).
		Rotate(pose.Yaw.Degrees())
}

// DefaultMapper maps every object to a single object of typ.
func DefaultMapper(typ string) ObjectMapper {
	return MapObjectFunc(func(vo VisibleObject) []Object {
		return []Object{ObjectFrom(typ, vo)}
	})
}

// At sets origin.
func (o Object) At(x, y float64) Object {
	o[PropOrigin] = &Pos{X: x, Y: y}
	return o
}

// Radius sets radius.
func (o Object) Radius(r float64) Object {
	o[PropRadius] = r
	return o
}

// Rotate sets rotate.
func (o Object) Rotate(deg float64) Object {
	o[PropRotate] = deg
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}
