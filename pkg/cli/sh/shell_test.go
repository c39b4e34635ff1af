package sh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

type plainMsg struct{}

func (m *plainMsg) NewMessage() fx.Message { return &plainMsg{} }

func TestFormatResult(t *testing.T) {
	out, err := FormatResult(msgs.NewCommandOK(), false)
	require.NoError(t, err)
	require.Equal(t, "OK", out)

	caps := &msgs.CarCaps{Size: 2, Speed: 10}
	out, err = FormatResult(caps, true)
	require.NoError(t, err)
	require.JSONEq(t, `{"size":2,"speed":10}`, out)

	out, err = FormatResult(caps, false)
	require.NoError(t, err)
	require.Contains(t, out, "CarCaps ")

	_, err = FormatResult(&plainMsg{}, false)
	require.ErrorIs(t, err, msgs.ErrNotSerializable)
}

func TestFormatInfo(t *testing.T) {
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: l1.CarControllerType, ID: "c1"}}
	require.Equal(t, "arcade-car/c1", FormatInfo(info))
	info.Meta.Description = "red car"
	require.Equal(t, "arcade-car/c1: red car", FormatInfo(info))
}

func TestFilterInfo(t *testing.T) {
	infoList := []l1.ControllerInfo{
		{Ref: l1.ControllerRef{Type: l1.CarControllerType, ID: "c1"}},
		{Ref: l1.ControllerRef{Type: "joystick", ID: "j1"}},
		{Ref: l1.ControllerRef{Type: l1.CarControllerType, ID: "c2"}},
	}
	require.Len(t, filterInfo(infoList, nil), 3)
	cars := filterInfo(infoList, OfType(l1.CarControllerType))
	require.Len(t, cars, 2)
	require.Equal(t, "c2", cars[1].Ref.ID)
	require.NotNil(t, filterInfo(nil, OfType("tank")))
	require.Empty(t, filterInfo(nil, OfType("tank")))
}

func TestPrompt(t *testing.T) {
	require.Equal(t, "[none] > ", prompt(nil))
	require.Equal(t, "arcade-car/c1 > ", prompt(&l1.ControllerRef{Type: l1.CarControllerType, ID: "c1"}))
}

type loopbackConnector struct {
	rw  comm.PacketReadWriter
	err error
}

func (c *loopbackConnector) Discover(context.Context) ([]l1.ControllerInfo, error) {
	return nil, c.err
}

func (c *loopbackConnector) Connect(context.Context, l1.ControllerRef) (l1.ControllerConn, error) {
	if c.err != nil {
		return nil, c.err
	}
	conn := &comm.ControllerConn{}
	conn.Init(c.rw)
	return conn, nil
}

func TestConnLoop(t *testing.T) {
	carEnd, driverEnd := comm.Loopback()
	var reg comm.Registrar
	reg.Init(carEnd)
	carLoop := fx.NewLoop().Add(&reg, &comm.UnsupportedCommands{})
	carLoop.Interval = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go carLoop.Run(ctx)

	ref := l1.ControllerRef{Type: l1.CarControllerType, ID: "c1"}
	cl, err := newConnLoop(context.Background(), &loopbackConnector{rw: driverEnd}, ref)
	require.NoError(t, err)
	_, err = cl.Do(&msgs.CarCapsQuery{})
	var cmdErr *msgs.CommandErr
	require.ErrorAs(t, err, &cmdErr)
	cl.Close()

	errConnect := errors.New("refused")
	_, err = newConnLoop(context.Background(), &loopbackConnector{err: errConnect}, ref)
	require.Equal(t, errConnect, err)
}
