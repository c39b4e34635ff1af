package car

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
	"github.com/robotalks/arcadecar/pkg/sim"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
	"github.com/robotalks/arcadecar/pkg/sim/physics/arcade"
)

type testCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *testCommand) Msg() fx.Message { return c.msg }

func (c *testCommand) Done(reply fx.Message) error {
	c.reply = reply
	return nil
}

type eventRecorder struct {
	events []*msgs.CarState
}

func (r *eventRecorder) SendEvent(_ context.Context, msg fx.Message) error {
	r.events = append(r.events, msg.(*msgs.CarState))
	return nil
}

type objectRecorder struct {
	changed []sim.Object
	removed []sim.Object
}

func (r *objectRecorder) ObjectsChanged(_ fx.ControlContext, objs ...sim.Object) {
	r.changed = append(r.changed, objs...)
}

func (r *objectRecorder) ObjectsRemoved(_ fx.ControlContext, objs ...sim.Object) {
	r.removed = append(r.removed, objs...)
}

type testSim struct {
	world  ecs.World
	loop   *fx.Loop
	ctl    *Controller
	events *eventRecorder
	now    time.Time
}

func newTestSim(t *testing.T, conf Config) *testSim {
	s := &testSim{world: ecs.NewWorld(), events: &eventRecorder{}, now: time.Unix(1000, 0)}
	e := &env.Env{
		Config:    &env.Config{Info: l1.ControllerInfo{Ref: l1.ControllerRef{Type: l1.CarControllerType, ID: t.Name()}}},
		Registrar: &comm.RegistrarMux{},
	}
	e.Registrar.Add(s.events)
	s.ctl = NewController(e, &s.world, conf)
	s.loop = fx.NewLoop()
	s.loop.Timestep = 100 * time.Millisecond
	s.loop.Add(physics.NewIntegrator(&s.world), arcade.New(&s.world), s.ctl)
	return s
}

func (s *testSim) step() {
	s.loop.Step(context.Background(), s.now)
	s.now = s.now.Add(s.loop.Timestep)
}

func (s *testSim) do(msg fx.Message) *testCommand {
	cmd := &testCommand{msg: msg}
	s.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	s.step()
	return cmd
}

func testConfig() Config {
	conf := *NewConfig()
	conf.InputTimeout = 0
	return conf
}

func TestSpawn(t *testing.T) {
	conf := testConfig()
	conf.X, conf.Z = 3, -4
	conf.Heading = 90
	s := newTestSim(t, conf)

	pose := s.ctl.Pose()
	require.Equal(t, 3.0, pose.X)
	require.Equal(t, 0.0, pose.Y)
	require.Equal(t, -4.0, pose.Z)
	require.InDelta(t, math.Pi/2, pose.Yaw.Radians(), 1e-9)
	require.Equal(t, sim.Size{CX: 2, CY: 2, CZ: 2}, s.ctl.OutlineSize())
	require.Equal(t, l1.CarControllerType+"/"+t.Name(), s.ctl.Name())

	s.step()
	require.Len(t, s.events.events, 1)
	s.step()
	require.Len(t, s.events.events, 1, "unchanged state must not be published")
}

func TestCommands(t *testing.T) {
	s := newTestSim(t, testConfig())
	listener := &objectRecorder{}
	s.ctl.SubscribeObjectsChange(listener)

	caps, ok := s.do(&msgs.CarCapsQuery{}).reply.(*msgs.CarCaps)
	require.True(t, ok)
	require.Equal(t, 2.0, caps.Size)
	require.Equal(t, 10.0, caps.Speed)
	require.InDelta(t, math.Pi/2, caps.TurnSpeed, 1e-9)

	cmd := s.do(&msgs.CarInput{Acceleration: 1, Turn: 0.5})
	require.IsType(t, &msgs.CommandOK{}, cmd.reply)
	require.Equal(t, arcade.Input{Acceleration: 1, Turn: 0.5}, s.ctl.Input())

	// facing -Z, positive throttle pushes toward +Z.
	state := s.ctl.State()
	require.Greater(t, state.Z, 0.0)
	require.Greater(t, state.Speed, 0.0)
	require.Greater(t, state.Yaw, 0.0)
	require.Equal(t, arcade.BaseDamping, state.Damping)
	require.NotEmpty(t, listener.changed)

	query := s.do(&msgs.CarStateQuery{})
	reply, ok := query.reply.(*msgs.CarStateReply)
	require.True(t, ok)
	require.Equal(t, state, *reply.State)

	cmd = s.do(&msgs.CarInput{Handbrake: true})
	require.IsType(t, &msgs.CommandOK{}, cmd.reply)
	require.True(t, s.ctl.State().Handbrake)
	require.Equal(t, arcade.HandbrakeDamping, s.ctl.State().Damping)

	cmd = s.do(&msgs.CarInputReset{})
	require.IsType(t, &msgs.CommandOK{}, cmd.reply)
	require.True(t, s.ctl.Input().IsNeutral())

	last := s.events.events[len(s.events.events)-1]
	require.Equal(t, s.ctl.State(), *last)
}

func TestUnknownCommandLeftForOthers(t *testing.T) {
	s := newTestSim(t, testConfig())
	cmd := s.do(&msgs.CommandOK{})
	require.Nil(t, cmd.reply)
}

func TestInputTimeout(t *testing.T) {
	conf := testConfig()
	conf.InputTimeout = 250 * time.Millisecond
	s := newTestSim(t, conf)

	s.do(&msgs.CarInput{Acceleration: 1})
	require.False(t, s.ctl.Input().IsNeutral())
	s.step()
	s.step()
	require.False(t, s.ctl.Input().IsNeutral())
	s.step()
	require.True(t, s.ctl.Input().IsNeutral())

	s.do(&msgs.CarInput{Acceleration: -1})
	require.Equal(t, -1.0, s.ctl.Input().Acceleration)
}

func TestDespawn(t *testing.T) {
	s := newTestSim(t, testConfig())
	listener := &objectRecorder{}
	s.ctl.SubscribeObjectsChange(listener)
	s.step()

	s.ctl.Despawn(nil)
	require.Len(t, listener.removed, 1)
	require.False(t, s.world.Alive(s.ctl.Motor))
	require.False(t, s.world.Alive(s.ctl.Car))

	cmd := s.do(&msgs.CarInput{Acceleration: 1})
	errReply, ok := cmd.reply.(*msgs.CommandErr)
	require.True(t, ok)
	require.Equal(t, ErrDespawned.Error(), errReply.Message)
	require.Equal(t, sim.Pose{}, s.ctl.Pose())
	require.True(t, s.ctl.Input().IsNeutral())
}
