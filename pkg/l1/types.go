package l1

import (
	"context"

	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// CarControllerType is the controller type under which cars register.
const CarControllerType = "arcade-car"

// Registrar announces a controller (a car) to a registry and
// forwards received commands into its loop.
type Registrar interface {
	// SendEvent sends an event to connected drivers.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies a registered controller, e.g. a car.
type ControllerRef struct {
	// Type is controller type, e.g. CarControllerType.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is published retained alongside the registration.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo describes a registered controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by drivers to find and connect to controllers.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Wait blocks until the command completes or ctx is done.
func Wait(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res, ok := <-f.ResultChan():
		if !ok {
			return nil, context.Canceled
		}
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
