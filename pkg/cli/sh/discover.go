package sh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

// DiscoverTimeout limits how long discovery waits for registrations.
var DiscoverTimeout = 5 * time.Second

// ErrAmbiguous is reported when a choice is needed without a terminal.
var ErrAmbiguous = errors.New("more than one controller discovered in non-interactive mode")

// FormatInfo renders ControllerInfo as "type/id: description".
func FormatInfo(info l1.ControllerInfo) string {
	if info.Meta.Description == "" {
		return info.Ref.Name()
	}
	return info.Ref.Name() + ": " + info.Meta.Description
}

// FormatResult renders a command result for display.
func FormatResult(msg fx.Message, asJSON bool) (string, error) {
	sm, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", fmt.Errorf("%T: %w", msg, msgs.ErrNotSerializable)
	}
	if asJSON {
		out, err := json.Marshal(sm.Serializable())
		return string(out), err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	return fmt.Sprintf("%s %s",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		sm.Serializable().String()), nil
}

// OfType matches controllers of typ.
func OfType(typ string) func(l1.ControllerInfo) bool {
	return func(info l1.ControllerInfo) bool { return info.Ref.Type == typ }
}

func filterInfo(infoList []l1.ControllerInfo, match func(l1.ControllerInfo) bool) []l1.ControllerInfo {
	items := []l1.ControllerInfo{}
	for _, info := range infoList {
		if match == nil || match(info) {
			items = append(items, info)
		}
	}
	return items
}

// DiscoverControllers lists registered controllers accepted by match,
// which may be nil.
func (s *Shell) DiscoverControllers(match func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), DiscoverTimeout)
	defer cancel()
	infoList, err := connector.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return filterInfo(infoList, match), nil
}

// SelectController discovers controllers and asks for a choice if more
// than one is found. It returns nil if none is found.
func (s *Shell) SelectController(match func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(match)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	if len(infoList) == 1 {
		return &infoList[0], nil
	}
	if !s.Interactive {
		return nil, ErrAmbiguous
	}
	items := make([]string, len(infoList))
	for n, info := range infoList {
		items[n] = FormatInfo(info)
	}
	index := s.Shell.MultiChoice(items, "Which one to connect?")
	if index < 0 {
		return nil, nil
	}
	return &infoList[index], nil
}

var (
	// DiscoverCmd lists registered controllers, optionally of one type.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[TYPE] list registered cars and drivers",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var match func(l1.ControllerInfo) bool
			if len(c.Args) > 0 {
				match = OfType(c.Args[0])
			}
			infoList, err := s.DiscoverControllers(match)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			lines := make([]string, len(infoList))
			for n, info := range infoList {
				lines[n] = FormatInfo(info)
			}
			c.Println(strings.Join(lines, "\n"))
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID]], discovers when ID is omitted",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref l1.ControllerRef
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else {
				var match func(l1.ControllerInfo) bool
				if len(c.Args) == 1 {
					match = OfType(c.Args[0])
				}
				info, err := s.SelectController(match)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(errors.New("nothing discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// InfoCmd prints the connected controller.
	InfoCmd = ishell.Cmd{
		Name: "info",
		Help: "show the connected controller",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.OutputJSON {
				out, _ := json.Marshal(s.Loop.Ref)
				c.Println(string(out))
				return
			}
			c.Println(s.Loop.Ref.Name())
		}),
	}
)
