package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message defines the abstract message to be
// consumed in a controlling loop.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// Controller defines the abstract controlling logic.
type Controller interface {
	Control(ControlContext) error
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// StepSource provides the simulated time elapsed since the
// previous iteration.
type StepSource interface {
	Elapsed() time.Duration
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	TimeSource
	StepSource
	// Context retrieves context.Context.
	Context() context.Context
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// Messages retrieves messages posted before this iteration
	// started and not yet taken by an earlier stage.
	Messages() MessageStore

	LoopControl
}

// PriorityLevels is the number of stages in an iteration.
const PriorityLevels int = 16

// Stages of an iteration, run in ascending order.
const (
	// PrLvInput is where inputs for the current tick are collected.
	PrLvInput int = 4
	// PrLvControl is where controllers react to messages.
	PrLvControl int = 8
	// PrLvNormal is the stage for anything without a preference.
	PrLvNormal = PrLvControl
	// PrLvPreIntegrate is where forces and damping are set up for
	// the integration pass.
	PrLvPreIntegrate = PrLvControl
	// PrLvIntegrate is where the dynamics engine advances bodies.
	PrLvIntegrate int = 10
	// PrLvPostIntegrate is where integrated state is read back.
	PrLvPostIntegrate int = 12
	// PrLvPostProc is where changes of the tick are reported.
	PrLvPostProc int = 14
	// PrLvIdle is the last stage, for housekeeping.
	PrLvIdle = PriorityLevels - 1
)

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration.
	TriggerNext()
}

// MessageStore provides read/write access to a list of messages.
type MessageStore interface {
	// ProcessMessages uses a processor to process all messages.
	ProcessMessages(MessageProcessor)

	MessageAppender
}

// MessageAppender appends message to store.
type MessageAppender interface {
	// AddMessages appends messages to the store for next processing cycle.
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	// CurrentMessage gets the current message being processed.
	CurrentMessage() Message
	// MessageTaken indicates the message has been processed and
	// should be removed from store.
	MessageTaken()
	// StopProcessing indicates no need to examine further messages.
	StopProcessing()

	MessageAppender
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}
