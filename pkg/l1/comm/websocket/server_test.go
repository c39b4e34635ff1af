package websocket

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

var testInfo = l1.ControllerInfo{
	Ref:  l1.ControllerRef{Type: l1.CarControllerType, ID: "ws1"},
	Meta: l1.ControllerMeta{Description: "test car"},
}

func TestServerAndConnector(t *testing.T) {
	srv := NewServer("", testInfo)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	carLoop := fx.NewLoop().Add(&srv.hub, &comm.UnsupportedCommands{})
	carLoop.Interval = 5 * time.Millisecond
	carLoop.AddController(fx.PrLvInput, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if cmd, ok := mctx.CurrentMessage().(*l1.CommandMsg); ok {
				if _, ok := cmd.Command.Msg().(*msgs.CarCapsQuery); ok {
					mctx.MessageTaken()
					cmd.Command.Done(&msgs.CarCaps{Size: 2, Speed: 10, TurnSpeed: 1})
				}
			}
		}))
		return nil
	}))
	go carLoop.Run(ctx)

	connector, err := NewConnector(httpSrv.URL + DefaultPath)
	require.NoError(t, err)
	infoList, err := connector.Discover(ctx)
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{testInfo}, infoList)

	_, err = connector.Connect(ctx, l1.ControllerRef{Type: l1.CarControllerType, ID: "other"})
	require.Error(t, err)

	conn, err := connector.Connect(ctx, testInfo.Ref)
	require.NoError(t, err)
	driverLoop := fx.NewLoop().Add(conn.(fx.LoopAdder))
	driverLoop.Interval = 5 * time.Millisecond
	go driverLoop.Run(ctx)

	res, err := l1.Wait(ctx, conn.DoCommand(&msgs.CarCapsQuery{}))
	require.NoError(t, err)
	require.Equal(t, &msgs.CarCaps{Size: 2, Speed: 10, TurnSpeed: 1}, res)

	_, err = l1.Wait(ctx, conn.DoCommand(&msgs.CarStateQuery{}))
	require.ErrorContains(t, err, msgs.ErrUnsupportedCommand.Error())
	require.Equal(t, 1, srv.Connections())
}

func TestNewConnector(t *testing.T) {
	c, err := NewConnector("http://car.local:8080")
	require.NoError(t, err)
	require.Equal(t, DefaultPath, c.URL.Path)

	_, err = NewConnector("mqtt://localhost:1883/arcade/")
	require.Error(t, err)
}

func TestServerURL(t *testing.T) {
	require.Equal(t, "http://localhost:8080/car", NewServer(":8080", testInfo).URL())
	require.Equal(t, "http://10.0.0.2:9000/car", NewServer("10.0.0.2:9000", testInfo).URL())
}
