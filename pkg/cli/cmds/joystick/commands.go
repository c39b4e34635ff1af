// Package joystick adds shell commands to operate joystickd.
package joystick

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/arcadecar/pkg/cli/sh"
	"github.com/robotalks/arcadecar/pkg/joystick/msgs"
	"github.com/robotalks/arcadecar/pkg/l1"
)

var (
	// JoystickStatusCmd exposes JoystickStatusQuery command.
	JoystickStatusCmd = ishell.Cmd{
		Name:    "js.status",
		Aliases: []string{"jss"},
		Help:    "show device, connected car and current input",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.JoystickStatusQuery{})
		}),
	}

	// JoystickConnectCmd asks joystickd to drive a car.
	JoystickConnectCmd = ishell.Cmd{
		Name:    "js.connect",
		Aliases: []string{"jsc"},
		Help:    "[ID [REGISTRY_URL]], discovers cars when ID is omitted",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := connectMsg(c.Args, func() (*l1.ControllerInfo, error) {
				return sh.ShellFrom(c).SelectController(isCar)
			})
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// JoystickDisconnectCmd stops driving the car.
	JoystickDisconnectCmd = ishell.Cmd{
		Name:    "js.disconnect",
		Aliases: []string{"jsd"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.JoystickConnect{})
		}),
	}
)

var isCar = sh.OfType(l1.CarControllerType)

func connectMsg(args []string, selectCar func() (*l1.ControllerInfo, error)) (*msgs.JoystickConnect, error) {
	msg := &msgs.JoystickConnect{Type: l1.CarControllerType}
	if len(args) > 0 {
		msg.ID = args[0]
		if len(args) > 1 {
			msg.RegistryURL = args[1]
		}
		return msg, nil
	}
	info, err := selectCar()
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("no car discovered")
	}
	msg.Type, msg.ID = info.Ref.Type, info.Ref.ID
	return msg, nil
}

func init() {
	sh.AddCmds(
		&JoystickStatusCmd,
		&JoystickConnectCmd,
		&JoystickDisconnectCmd,
	)
}
