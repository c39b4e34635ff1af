package comm

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 1 * time.Second

// ErrConnClosed fails commands issued on or pending in a closed connection.
var ErrConnClosed = errors.New("controller connection closed")

// ControllerConn implements l1.ControllerConn over a Pipe. Replies are
// matched to commands by sequence number; commands without a reply are
// failed with context.DeadlineExceeded after Expiration.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	seq     uint32
	pending list.List // of *commandFuture, ordered by expireAt
	bySeq   map[uint32]*commandFuture
	closed  bool
	lock    sync.Mutex
}

// Init binds the connection to rw.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.bySeq = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := &commandFuture{
		seq:      c.nextSeq(),
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if c.closed {
		f.complete(l1.Result{Err: ErrConnClosed})
		return f
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.complete(l1.Result{Err: err})
		return f
	}
	f.elem = c.pending.PushBack(f)
	c.bySeq[f.seq] = f
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.pending.Len()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	c.pipe.addTransport(l)
	l.AddRunnable(fx.RunnableFunc(c.run))
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) run(ctx context.Context) error {
	err := c.pipe.Run(ctx)
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	for c.pending.Len() > 0 {
		c.take(c.pending.Front().Value.(*commandFuture)).complete(l1.Result{Err: ErrConnClosed})
	}
	return err
}

// nextSeq skips 0, which marks a message without a sequence.
func (c *ControllerConn) nextSeq() uint32 {
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	return c.seq
}

func (c *ControllerConn) take(f *commandFuture) *commandFuture {
	c.pending.Remove(f.elem)
	delete(c.bySeq, f.seq)
	return f
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f, ok := c.bySeq[typed.Sequence]
	if !ok {
		// late reply of an expired command.
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	c.take(f).complete(result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := time.Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.pending.Len() > 0 {
		f := c.pending.Front().Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.take(f).complete(l1.Result{Err: context.DeadlineExceeded})
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
}

func (f *commandFuture) complete(r l1.Result) {
	f.result <- r
	close(f.result)
}

// ResultChan implements l1.CommandFuture.
func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
