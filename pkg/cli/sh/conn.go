package sh

import (
	"context"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
)

// CommandTimeout limits how long DoCommand waits for a result.
var CommandTimeout = time.Second

// ConnLoop is a running loop with a controller connection.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.ControllerRef
	Loop   *fx.Loop
	Conn   l1.ControllerConn

	done chan struct{}
}

func newConnLoop(ctx context.Context, connector l1.Connector, ref l1.ControllerRef) (*ConnLoop, error) {
	cl := &ConnLoop{Ref: ref, Loop: fx.NewLoop(), done: make(chan struct{})}
	cl.Ctx, cl.Cancel = context.WithCancel(ctx)
	conn, err := connector.Connect(cl.Ctx, ref)
	if err != nil {
		cl.Cancel()
		return nil, err
	}
	cl.Conn = conn
	if adder, ok := conn.(fx.LoopAdder); ok {
		cl.Loop.Add(adder)
	}
	go func() {
		defer close(cl.done)
		cl.Loop.Run(cl.Ctx)
	}()
	return cl, nil
}

// Do sends a command and waits for its result.
func (cl *ConnLoop) Do(msg fx.Message) (fx.Message, error) {
	ctx, cancel := context.WithTimeout(cl.Ctx, CommandTimeout)
	defer cancel()
	return l1.Wait(ctx, cl.Conn.DoCommand(msg))
}

// Close stops the loop and waits for it to exit.
func (cl *ConnLoop) Close() {
	cl.Cancel()
	<-cl.done
}

// Connect replaces the current connection with one to ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	cl, err := newConnLoop(context.Background(), connector, ref)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Loop = cl
	s.Shell.SetPrompt(prompt(&ref))
	return nil
}

// Disconnect closes the current connection if any.
func (s *Shell) Disconnect() {
	if s.Loop == nil {
		return
	}
	s.Loop.Close()
	s.Loop = nil
	s.Shell.SetPrompt(prompt(nil))
}

// DoCommand runs a command on the connected controller and prints the
// result.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	if s.Loop == nil {
		c.Err(ErrNotConnected)
		return ErrNotConnected
	}
	res, err := s.Loop.Do(msg)
	if err == nil {
		var out string
		if out, err = FormatResult(res, s.OutputJSON); err == nil {
			c.Println(out)
			return nil
		}
	}
	c.Err(err)
	return err
}
