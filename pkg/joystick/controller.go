package joystick

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/joystick/device"
	"github.com/robotalks/arcadecar/pkg/joystick/msgs"
	"github.com/robotalks/arcadecar/pkg/l1"
	connenv "github.com/robotalks/arcadecar/pkg/l1/env/connector"
	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/arcadecar/pkg/l1/msgs"
)

// Controller drives a connected car with a joystick.
type Controller struct {
	Env         *env.Env
	DeviceIndex int
	Verbose     bool
	Mapping     Mapping
	Repeat      time.Duration

	conn        *connection
	eventCh     chan device.Event
	device      device.Device
	deviceTimer <-chan time.Time

	status        msgs.JoystickStatus
	statusChanged bool
}

// NewController creates a Controller.
func NewController(e *env.Env) *Controller {
	return &Controller{
		Env:           e,
		DeviceIndex:   defaultConfig.DeviceIndex,
		Verbose:       defaultConfig.Verbose,
		Mapping:       defaultConfig.Mapping,
		Repeat:        defaultConfig.Repeat,
		statusChanged: true,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	c.status.Mapping = c.Mapping.Message()
	loop.AddRunnable(fx.NamedRun("joystick", c))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.device != nil {
			c.device.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	c.deviceTimer = time.After(time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.deviceTimer:
			c.deviceTimer = nil
			js, err := c.openDevice()
			if err != nil || js == nil {
				c.deviceTimer = time.After(time.Second)
				continue
			}
			glog.Infof("joystick %d %q opened", js.Index(), js.Name())
			c.device, c.eventCh = js, make(chan device.Event, 1)
			go c.pollJoystick(ctx)
			loopCtl.PostMessage(&statusMsg{
				device: &msgs.JoystickDevice{
					Index: uint32(js.Index()),
					Name:  js.Name(),
				},
			})
		case ev, ok := <-c.eventCh:
			if ok {
				loopCtl.PostMessage(&eventMsg{event: ev})
			} else {
				glog.Warning("joystick lost")
				loopCtl.PostMessage(&eventMsg{stopAll: true})
				if c.device != nil {
					c.device.Close()
				}
				c.device, c.eventCh = nil, nil
				c.deviceTimer = time.After(time.Second)
				loopCtl.PostMessage(&statusMsg{
					device: &msgs.JoystickDevice{Index: noDevice},
				})
			}
			loopCtl.TriggerNext()
		}
	}
}

func (c *Controller) openDevice() (device.Device, error) {
	if c.DeviceIndex >= 0 {
		js, err := device.Open(c.DeviceIndex)
		if err != nil {
			glog.Warningf("open joystick %d: %v", c.DeviceIndex, err)
		}
		return js, err
	}
	glog.V(1).Info("detecting joystick")
	js, err := device.DetectAndOpen(0)
	if err != nil {
		glog.Warningf("detect joystick: %v", err)
	} else if js == nil {
		glog.V(1).Info("no joystick detected")
	}
	return js, err
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *l1.CommandMsg:
			switch m := msg.Command.Msg().(type) {
			case *msgs.JoystickStatusQuery:
				mctx.MessageTaken()
				status := c.status
				msg.Command.Done(&msgs.JoystickStatusReply{Status: &status})
			case *msgs.JoystickConnect:
				mctx.MessageTaken()
				msg.Command.Done(c.connect(cc, m))
			}
		case *eventMsg:
			mctx.MessageTaken()
			if conn := c.conn; conn != nil {
				conn.loop.PostMessage(msg)
				conn.loop.TriggerNext()
			} else {
				glog.V(2).Info("joystick event dropped, no car connected")
			}
		case *statusMsg:
			mctx.MessageTaken()
			c.applyStatus(msg)
		}
	}))
	return nil
}

func (c *Controller) applyStatus(msg *statusMsg) {
	if msg.device != nil {
		if msg.device.Index == noDevice {
			c.status.Device = nil
		} else {
			c.status.Device = msg.device
		}
		c.statusChanged = true
	}
	if msg.conn != nil {
		if msg.conn.Type == "" {
			c.status.Connection = nil
			c.status.Input = nil
		} else {
			c.status.Connection = msg.conn
		}
		c.statusChanged = true
	}
	if msg.input != nil {
		c.status.Input = msg.input
		c.statusChanged = true
	}
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed && c.Env.Registrar != nil {
		status := c.status
		return c.Env.Registrar.SendEvent(cc.Context(), &status)
	}
	return nil
}

func (c *Controller) connect(cc fx.ControlContext, msg *msgs.JoystickConnect) fx.Message {
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
		cc.PostMessage(&statusMsg{conn: &msgs.JoystickConnect{}})
	}
	if msg.Type == "" && msg.ID == "" {
		// treat as disconnect.
		return l1msgs.NewCommandOK()
	}
	conf := connenv.NewConfig()
	if conf.RegistryURL = msg.RegistryURL; conf.RegistryURL == "" && len(c.Env.RegistryURLs) > 0 {
		conf.RegistryURL = c.Env.RegistryURLs[0]
	}
	if conf.Ref.Type, conf.Ref.ID = msg.Type, msg.ID; conf.Ref.Type == "" {
		conf.Ref.Type = l1.CarControllerType
	}
	if !conf.Ref.IsValid() {
		return l1msgs.NewCommandErrFromMsg("car ref invalid")
	}
	connector, err := conf.NewConnector()
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	ctx, cancel := context.WithCancel(cc.Context())
	carConn, err := connector.Connect(ctx, conf.Ref)
	if err != nil {
		cancel()
		return l1msgs.NewCommandErr(err)
	}
	c.conn = newConnection(cc, carConn, c.Mapping, c.Repeat)
	c.conn.cancel = cancel
	go c.conn.run(ctx)
	glog.Infof("driving %s", conf.Ref.Name())
	cc.PostMessage(&statusMsg{conn: &msgs.JoystickConnect{
		RegistryURL: conf.RegistryURL,
		Type:        conf.Ref.Type,
		ID:          conf.Ref.ID,
	}})
	return l1msgs.NewCommandOK()
}

func (c *Controller) pollJoystick(ctx context.Context) {
	dev, ch := c.device, c.eventCh
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Warningf("joystick read: %v", err)
			return
		}
		if ev == nil {
			continue
		}
		if c.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch evt := ev.(type) {
			case device.AxisEvent:
				glog.Infof(prefix+"axis %d: %d", evt.Index(), evt.Value())
			case device.ButtonEvent:
				glog.Infof(prefix+"button %d: %v", evt.Index(), evt.Pressed())
			}
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

const noDevice = 0xffffffff

type statusMsg struct {
	device *msgs.JoystickDevice
	conn   *msgs.JoystickConnect
	input  *l1msgs.CarInput
}

func (m *statusMsg) NewMessage() fx.Message { return &statusMsg{} }

type eventMsg struct {
	event   device.Event
	stopAll bool
}

func (m *eventMsg) NewMessage() fx.Message { return &eventMsg{} }

// connection drives one car from its own loop.
type connection struct {
	cancel  func()
	conn    l1.ControllerConn
	loop    *fx.Loop
	parent  fx.LoopControl
	mapping Mapping
	repeat  time.Duration

	input    l1msgs.CarInput
	lastSent time.Time
}

func newConnection(parent fx.LoopControl, conn l1.ControllerConn, mapping Mapping, repeat time.Duration) *connection {
	c := &connection{
		conn:    conn,
		parent:  parent,
		mapping: mapping,
		repeat:  repeat,
	}
	c.loop = fx.NewLoop()
	if adder, ok := conn.(fx.LoopAdder); ok {
		c.loop.Add(adder)
	}
	c.loop.AddController(fx.PrLvControl, c)
	return c
}

func (c *connection) run(ctx context.Context) {
	c.loop.Run(ctx)
}

func (c *connection) close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Control implements Controller.
func (c *connection) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg, ok := mctx.CurrentMessage().(*eventMsg)
		if !ok {
			return
		}
		mctx.MessageTaken()
		if msg.stopAll {
			c.reset(cc.Time())
		} else if c.mapping.Apply(&c.input, msg.event) {
			c.send(cc.Time())
		}
	}))
	if c.repeat > 0 && c.input != (l1msgs.CarInput{}) && cc.Time().Sub(c.lastSent) >= c.repeat {
		c.send(cc.Time())
	}
	return nil
}

func (c *connection) send(now time.Time) {
	input := c.input
	c.conn.DoCommand(&input)
	c.lastSent = now
	c.parent.PostMessage(&statusMsg{input: &input})
}

func (c *connection) reset(now time.Time) {
	c.input = l1msgs.CarInput{}
	c.conn.DoCommand(&l1msgs.CarInputReset{})
	c.lastSent = now
	c.parent.PostMessage(&statusMsg{input: &l1msgs.CarInput{}})
}
