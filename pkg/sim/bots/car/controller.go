// Package car runs a single arcade car in a simulated world and exposes
// it to remote drivers.
package car

import (
	"errors"
	"time"

	"github.com/golang/glog"
	"github.com/mlange-42/ark/ecs"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
	"github.com/robotalks/arcadecar/pkg/sim"
	"github.com/robotalks/arcadecar/pkg/sim/physics"
	"github.com/robotalks/arcadecar/pkg/sim/physics/arcade"
)

// ErrDespawned indicates the car has been removed from the world.
var ErrDespawned = errors.New("car despawned")

// Controller owns one motor/car pair and feeds it remote input.
type Controller struct {
	Env    *env.Env
	Config Config

	Motor ecs.Entity
	Car   ecs.Entity

	sim.ObjectsChangeCaster

	world      *ecs.World
	inputs     *ecs.Map[arcade.Input]
	transforms *ecs.Map[sim.Transform]
	velocities *ecs.Map[physics.Velocity]
	dampings   *ecs.Map[physics.Damping]

	lastInput time.Time
	state     msgs.CarState
	reported  bool
}

// NewController spawns a car into w according to conf.
func NewController(e *env.Env, w *ecs.World, conf Config) *Controller {
	c := &Controller{
		Env:        e,
		Config:     conf,
		world:      w,
		inputs:     ecs.NewMap[arcade.Input](w),
		transforms: ecs.NewMap[sim.Transform](w),
		velocities: ecs.NewMap[physics.Velocity](w),
		dampings:   ecs.NewMap[physics.Damping](w),
	}
	pos := conf.Position()
	tr := sim.Transform{Translation: pos, Rotation: sim.AngleFromDegrees(conf.Heading).Quat()}
	c.Car = arcade.SpawnCar(w, tr)
	c.Motor = arcade.NewBundle(c.Car, pos, conf.Size, conf.Speed, conf.TurnSpeedRadians()).Spawn(w)
	glog.Infof("%s: spawned at %v size %v", c.Name(), pos, conf.Size)
	return c
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.Env.Config.Info.Ref.Name()
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvInput, fx.ControlFunc(c.HandleCommands))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.Report))
}

// Pose implements Positionable.
func (c *Controller) Pose() sim.Pose {
	if tr := c.carTransform(); tr != nil {
		return tr.Pose()
	}
	return sim.Pose{}
}

// OutlineSize implements Sized.
func (c *Controller) OutlineSize() sim.Size {
	return sim.Size{CX: c.Config.Size, CY: c.Config.Size, CZ: c.Config.Size}
}

// State returns the state reported after the latest tick.
func (c *Controller) State() msgs.CarState {
	return c.state
}

// Input returns the current input, zero if the motor is gone.
func (c *Controller) Input() arcade.Input {
	if !c.motorAlive() {
		return arcade.Input{}
	}
	return *c.inputs.Get(c.Motor)
}

// Caps returns the static parameters of the car.
func (c *Controller) Caps() *msgs.CarCaps {
	return &msgs.CarCaps{
		Size:      c.Config.Size,
		Speed:     c.Config.Speed,
		TurnSpeed: c.Config.TurnSpeedRadians(),
	}
}

// Despawn removes both entities from the world.
func (c *Controller) Despawn(cc fx.ControlContext) {
	if c.motorAlive() {
		c.world.RemoveEntity(c.Motor)
	}
	if c.world.Alive(c.Car) {
		c.world.RemoveEntity(c.Car)
	}
	c.ObjectsRemoved(cc, c)
}

// HandleCommands applies driver commands to the input of the motor and
// resets the input once the driver went silent.
func (c *Controller) HandleCommands(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		reply := c.handleCommand(cc, cmdMsg.Command.Msg())
		if reply == nil {
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Warningf("%s: reply %T: %v", c.Name(), reply, err)
		}
	}))
	c.checkInputTimeout(cc.Time())
	return nil
}

func (c *Controller) handleCommand(cc fx.ControlContext, msg fx.Message) fx.Message {
	switch m := msg.(type) {
	case *msgs.CarCapsQuery:
		return c.Caps()
	case *msgs.CarStateQuery:
		state := c.state
		return &msgs.CarStateReply{State: &state}
	case *msgs.CarInput:
		if !c.motorAlive() {
			return msgs.NewCommandErr(ErrDespawned)
		}
		*c.inputs.Get(c.Motor) = arcade.Input{
			Acceleration: float64(m.Acceleration),
			Turn:         float64(m.Turn),
			Handbrake:    m.Handbrake,
		}
		c.lastInput = cc.Time()
		return msgs.NewCommandOK()
	case *msgs.CarInputReset:
		if !c.motorAlive() {
			return msgs.NewCommandErr(ErrDespawned)
		}
		c.inputs.Get(c.Motor).Reset()
		return msgs.NewCommandOK()
	}
	return nil
}

func (c *Controller) checkInputTimeout(now time.Time) {
	if c.Config.InputTimeout <= 0 || !c.motorAlive() {
		return
	}
	input := c.inputs.Get(c.Motor)
	if input.IsNeutral() || now.Sub(c.lastInput) < c.Config.InputTimeout {
		return
	}
	glog.V(1).Infof("%s: no input for %v, reset", c.Name(), now.Sub(c.lastInput))
	input.Reset()
}

// Report publishes the car state when it changed during the tick.
func (c *Controller) Report(cc fx.ControlContext) error {
	state, ok := c.currentState(cc.Time())
	if !ok {
		return nil
	}
	prev := c.state
	prev.Tick = state.Tick
	c.state = state
	if c.reported && prev == state {
		return nil
	}
	c.reported = true
	c.ObjectsChanged(cc, c)
	if c.Env.Registrar == nil {
		return nil
	}
	if err := c.Env.Registrar.SendEvent(cc.Context(), &state); err != nil {
		glog.V(1).Infof("%s: send state: %v", c.Name(), err)
	}
	return nil
}

func (c *Controller) currentState(now time.Time) (msgs.CarState, bool) {
	tr := c.carTransform()
	if tr == nil || !c.motorAlive() {
		return msgs.CarState{}, false
	}
	input := c.inputs.Get(c.Motor)
	return msgs.CarState{
		X:         tr.Translation.X(),
		Y:         tr.Translation.Y(),
		Z:         tr.Translation.Z(),
		Yaw:       tr.Yaw().Radians(),
		Speed:     c.velocities.Get(c.Motor).Linear.Len(),
		Damping:   c.dampings.Get(c.Motor).Linear,
		Handbrake: input.Handbrake,
		Tick:      now.UnixNano(),
	}, true
}

func (c *Controller) motorAlive() bool {
	return c.world.Alive(c.Motor)
}

func (c *Controller) carTransform() *sim.Transform {
	if !c.world.Alive(c.Car) || !c.transforms.Has(c.Car) {
		return nil
	}
	return c.transforms.Get(c.Car)
}
