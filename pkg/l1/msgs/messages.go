package msgs

import (
	"errors"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// CarCapsQuery asks a car for its static parameters.
type CarCapsQuery struct {
}

// NewMessage implements Message.
func (m *CarCapsQuery) NewMessage() fx.Message { return &CarCapsQuery{} }

// TypeID implements SerializableMessage.
func (m *CarCapsQuery) TypeID() uint32 { return CarCapsQueryTypeID }

// Serializable implements SerializableMessage.
func (m *CarCapsQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarCapsQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarCapsQuery) Reset() { *m = CarCapsQuery{} }

// String implements proto.Message.
func (m *CarCapsQuery) String() string { return proto.CompactTextString(m) }

// CarCaps replies CarCapsQuery.
type CarCaps struct {
	// Size is the diameter of the motor body.
	Size float64 `protobuf:"fixed64,1,opt,name=size,proto3" json:"size,omitempty"`
	// Speed is the acceleration per unit of input.
	Speed float64 `protobuf:"fixed64,2,opt,name=speed,proto3" json:"speed,omitempty"`
	// TurnSpeed is the full yaw rate in radians per second.
	TurnSpeed float64 `protobuf:"fixed64,3,opt,name=turn_speed,json=turnSpeed,proto3" json:"turn_speed,omitempty"`
}

// NewMessage implements Message.
func (m *CarCaps) NewMessage() fx.Message { return &CarCaps{} }

// TypeID implements SerializableMessage.
func (m *CarCaps) TypeID() uint32 { return CarCapsTypeID }

// Serializable implements SerializableMessage.
func (m *CarCaps) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarCaps) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarCaps) Reset() { *m = CarCaps{} }

// String implements proto.Message.
func (m *CarCaps) String() string { return proto.CompactTextString(m) }

// CarInput replaces the driver input of a car.
type CarInput struct {
	Acceleration float32 `protobuf:"fixed32,1,opt,name=acceleration,proto3" json:"acceleration,omitempty"`
	Turn         float32 `protobuf:"fixed32,2,opt,name=turn,proto3" json:"turn,omitempty"`
	Handbrake    bool    `protobuf:"varint,3,opt,name=handbrake,proto3" json:"handbrake,omitempty"`
}

// NewMessage implements Message.
func (m *CarInput) NewMessage() fx.Message { return &CarInput{} }

// TypeID implements SerializableMessage.
func (m *CarInput) TypeID() uint32 { return CarInputTypeID }

// Serializable implements SerializableMessage.
func (m *CarInput) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarInput) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarInput) Reset() { *m = CarInput{} }

// String implements proto.Message.
func (m *CarInput) String() string { return proto.CompactTextString(m) }

// CarInputReset returns the driver input of a car to neutral.
type CarInputReset struct {
}

// NewMessage implements Message.
func (m *CarInputReset) NewMessage() fx.Message { return &CarInputReset{} }

// TypeID implements SerializableMessage.
func (m *CarInputReset) TypeID() uint32 { return CarInputResetTypeID }

// Serializable implements SerializableMessage.
func (m *CarInputReset) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarInputReset) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarInputReset) Reset() { *m = CarInputReset{} }

// String implements proto.Message.
func (m *CarInputReset) String() string { return proto.CompactTextString(m) }

// CarStateQuery asks for the latest CarState.
type CarStateQuery struct {
}

// NewMessage implements Message.
func (m *CarStateQuery) NewMessage() fx.Message { return &CarStateQuery{} }

// TypeID implements SerializableMessage.
func (m *CarStateQuery) TypeID() uint32 { return CarStateQueryTypeID }

// Serializable implements SerializableMessage.
func (m *CarStateQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarStateQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarStateQuery) Reset() { *m = CarStateQuery{} }

// String implements proto.Message.
func (m *CarStateQuery) String() string { return proto.CompactTextString(m) }

// CarStateReply replies CarStateQuery.
type CarStateReply struct {
	State *CarState `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
}

// NewMessage implements Message.
func (m *CarStateReply) NewMessage() fx.Message { return &CarStateReply{} }

// TypeID implements SerializableMessage.
func (m *CarStateReply) TypeID() uint32 { return CarStateReplyTypeID }

// Serializable implements SerializableMessage.
func (m *CarStateReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarStateReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarStateReply) Reset() { *m = CarStateReply{} }

// String implements proto.Message.
func (m *CarStateReply) String() string { return proto.CompactTextString(m) }

// CarState is an Event message reflecting the car after a tick.
type CarState struct {
	X float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x"`
	Y float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y"`
	Z float64 `protobuf:"fixed64,3,opt,name=z,proto3" json:"z"`
	// Yaw is the heading in radians, zero facing -Z.
	Yaw       float64 `protobuf:"fixed64,4,opt,name=yaw,proto3" json:"yaw"`
	Speed     float64 `protobuf:"fixed64,5,opt,name=speed,proto3" json:"speed"`
	Damping   float64 `protobuf:"fixed64,6,opt,name=damping,proto3" json:"damping"`
	Handbrake bool    `protobuf:"varint,7,opt,name=handbrake,proto3" json:"handbrake,omitempty"`
	// Tick is the loop time in unix nanoseconds.
	Tick int64 `protobuf:"varint,8,opt,name=tick,proto3" json:"tick"`
}

// NewMessage implements Message.
func (m *CarState) NewMessage() fx.Message { return &CarState{} }

// TypeID implements SerializableMessage.
func (m *CarState) TypeID() uint32 { return CarStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *CarState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CarState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CarState) Reset() { *m = CarState{} }

// String implements proto.Message.
func (m *CarState) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupCar     uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID     uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	CarCapsQueryTypeID  uint32 = GroupCar | 0x0000
	CarCapsTypeID       uint32 = CarCapsQueryTypeID | TypeIDMaskReply
	CarInputTypeID      uint32 = GroupCar | 0x0001
	CarInputResetTypeID uint32 = GroupCar | 0x0002
	CarStateQueryTypeID uint32 = GroupCar | 0x0003
	CarStateReplyTypeID uint32 = CarStateQueryTypeID | TypeIDMaskReply
	CarStateEventTypeID uint32 = GroupCar | TypeIDKindEvent | 0x0000
)

var (
	// ErrUnknownCommand indicates the command is unknown.
	ErrUnknownCommand = errors.New("unknown command")
)
