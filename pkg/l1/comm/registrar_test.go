package comm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

func runLoops(t *testing.T, loops ...*fx.Loop) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, len(loops))
	for _, l := range loops {
		l.Interval = 5 * time.Millisecond
		go func(l *fx.Loop) {
			l.Run(ctx)
			done <- struct{}{}
		}(l)
	}
	return func() {
		cancel()
		for range loops {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("loop did not stop")
			}
		}
	}
}

func TestRegistrarAndControllerConn(t *testing.T) {
	carEnd, driverEnd := Loopback()

	var reg Registrar
	reg.Init(carEnd)
	inputs := make(chan *msgs.CarInput, 1)
	carLoop := fx.NewLoop().Add(&reg, &UnsupportedCommands{})
	carLoop.AddController(fx.PrLvInput, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			cmd, ok := mctx.CurrentMessage().(*l1.CommandMsg)
			if !ok {
				return
			}
			if in, ok := cmd.Command.Msg().(*msgs.CarInput); ok {
				mctx.MessageTaken()
				inputs <- in
				cmd.Command.Done(msgs.NewCommandOK())
			}
		}))
		return nil
	}))

	var conn ControllerConn
	conn.Init(driverEnd)
	events := make(chan fx.Message, 1)
	driverLoop := fx.NewLoop().Add(&conn)
	driverLoop.AddController(fx.PrLvNormal, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if state, ok := mctx.CurrentMessage().(*msgs.CarState); ok {
				mctx.MessageTaken()
				events <- state
			}
		}))
		return nil
	}))

	stop := runLoops(t, carLoop, driverLoop)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := l1.Wait(ctx, conn.DoCommand(&msgs.CarInput{Acceleration: 1, Turn: -0.5}))
	require.NoError(t, err)
	require.IsType(t, &msgs.CommandOK{}, res)
	select {
	case in := <-inputs:
		require.Equal(t, float32(1), in.Acceleration)
		require.Equal(t, float32(-0.5), in.Turn)
	case <-ctx.Done():
		t.Fatal("input not received")
	}

	_, err = l1.Wait(ctx, conn.DoCommand(&msgs.CarCapsQuery{}))
	require.Error(t, err)
	cmdErr, ok := err.(*msgs.CommandErr)
	require.True(t, ok)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), cmdErr.Message)

	require.NoError(t, reg.SendEvent(ctx, &msgs.CarState{X: 3, Yaw: 1}))
	select {
	case msg := <-events:
		require.Equal(t, 3.0, msg.(*msgs.CarState).X)
	case <-ctx.Done():
		t.Fatal("event not received")
	}
}

func TestCommandExpiration(t *testing.T) {
	_, driverEnd := Loopback()
	var conn ControllerConn
	conn.Init(driverEnd)
	conn.Expiration = 10 * time.Millisecond

	stop := runLoops(t, fx.NewLoop().Add(&conn))
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := l1.Wait(ctx, conn.DoCommand(&msgs.CarStateQuery{}))
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestPendingFailsWhenConnCloses(t *testing.T) {
	carEnd, driverEnd := Loopback()
	var conn ControllerConn
	conn.Init(driverEnd)
	conn.Expiration = time.Minute

	stop := runLoops(t, fx.NewLoop().Add(&conn))
	defer stop()

	future := conn.DoCommand(&msgs.CarStateQuery{})
	require.Equal(t, 1, conn.Pending())
	require.NoError(t, carEnd.(io.Closer).Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := l1.Wait(ctx, future)
	require.Equal(t, ErrConnClosed, err)
	require.Zero(t, conn.Pending())

	_, err = l1.Wait(ctx, conn.DoCommand(&msgs.CarStateQuery{}))
	require.Error(t, err)
}

func TestLoopback(t *testing.T) {
	a, b := Loopback()
	require.NoError(t, a.WritePacket([]byte("ping")))
	pkt, err := b.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), pkt)

	require.NoError(t, b.(io.Closer).Close())
	_, err = a.ReadPacket()
	require.Equal(t, io.EOF, err)
	require.Equal(t, io.ErrClosedPipe, a.WritePacket([]byte("pong")))
}

type failingRegistrar struct {
	err  error
	sent []fx.Message
}

func (r *failingRegistrar) SendEvent(_ context.Context, msg fx.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestRegistrarMux(t *testing.T) {
	errBroken := errors.New("broken")
	ok, broken := &failingRegistrar{}, &failingRegistrar{err: errBroken}
	var mux RegistrarMux
	mux.Add(ok, broken)

	err := mux.SendEvent(context.Background(), &msgs.CarState{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errBroken))
	require.Len(t, ok.sent, 1)
	require.Len(t, broken.sent, 1)

	mux.Registrars = mux.Registrars[:1]
	require.NoError(t, mux.SendEvent(context.Background(), &msgs.CarState{}))
}
