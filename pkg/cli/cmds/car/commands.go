package car

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/arcadecar/pkg/cli/sh"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

var (
	// CarCapsQueryCmd exposes CarCapsQuery command.
	CarCapsQueryCmd = ishell.Cmd{
		Name:    "car.caps",
		Aliases: []string{"caps"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.CarCapsQuery{})
		}),
	}

	// CarInputCmd exposes CarInput command.
	CarInputCmd = ishell.Cmd{
		Name:    "car.input",
		Aliases: []string{"in"},
		Help:    "ACCEL(-1..1) TURN(-1..1) [handbrake]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseInput(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// CarInputResetCmd exposes CarInputReset command.
	CarInputResetCmd = ishell.Cmd{
		Name:    "car.reset",
		Aliases: []string{"stop"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.CarInputReset{})
		}),
	}

	// CarStateQueryCmd exposes CarStateQuery command.
	CarStateQueryCmd = ishell.Cmd{
		Name:    "car.state",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.CarStateQuery{})
		}),
	}
)

// ParseInput parses the arguments of car.input.
func ParseInput(args []string) (*msgs.CarInput, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("ACCEL and TURN required")
	}
	var msg msgs.CarInput
	accel, err := parseAxis(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid ACCEL: %w", err)
	}
	turn, err := parseAxis(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid TURN: %w", err)
	}
	msg.Acceleration, msg.Turn = accel, turn
	if len(args) > 2 {
		switch args[2] {
		case "handbrake", "hb":
			msg.Handbrake = true
		default:
			if msg.Handbrake, err = strconv.ParseBool(args[2]); err != nil {
				return nil, fmt.Errorf("invalid handbrake %q", args[2])
			}
		}
	}
	return &msg, nil
}

func parseAxis(s string) (float32, error) {
	val, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if val < -1 || val > 1 {
		return 0, fmt.Errorf("%v out of range", val)
	}
	return float32(val), nil
}

func init() {
	sh.AddCmds(
		&CarCapsQueryCmd,
		&CarInputCmd,
		&CarInputResetCmd,
		&CarStateQueryCmd,
	)
}
