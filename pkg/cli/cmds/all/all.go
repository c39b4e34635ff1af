// Package all registers all shell commands.
package all

import (
	// commands.
	_ "github.com/robotalks/arcadecar/pkg/cli/cmds/car"
	_ "github.com/robotalks/arcadecar/pkg/cli/cmds/joystick"
)
