// Package sh is an interactive shell talking to cars and joystick
// drivers registered in a registry.
package sh

import (
	"errors"
	"flag"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/arcadecar/pkg/l1"
	env "github.com/robotalks/arcadecar/pkg/l1/env/connector"
)

// ErrNotConnected is reported by commands needing a connection.
var ErrNotConnected = errors.New("not connected")

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop
}

const shellKey = "$shell"

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&InfoCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers commands. Call it from init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt(nil))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func requiring a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Run connects to the configured ref if AutoConnect, then evaluates args
// or starts the interactive shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}

	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		glog.Exit("command expected")
	}
}

func prompt(ref *l1.ControllerRef) string {
	if ref == nil {
		return "[none] > "
	}
	return ref.Name() + " > "
}

// Main parses flags and runs the shell on the remaining args.
func Main() {
	flag.Parse()
	defer glog.Flush()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
