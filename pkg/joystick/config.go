package joystick

import (
	"flag"
	"time"

	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
)

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex int
	Verbose     bool
	Mapping     Mapping
	// Repeat resends a non-neutral input at this interval so the car
	// does not reset it for silence. 0 disables.
	Repeat time.Duration
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Mapping:     DefaultMapping(),
	Repeat:      200 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
	flag.IntVar(&defaultConfig.Mapping.HandbrakeButton, "handbrake-button", defaultConfig.Mapping.HandbrakeButton, "Button index of handbrake.")
	flag.Float64Var(&defaultConfig.Mapping.DeadZone, "deadzone", defaultConfig.Mapping.DeadZone, "Normalized axis dead zone.")
	flag.DurationVar(&defaultConfig.Repeat, "repeat", defaultConfig.Repeat, "Resend held input at this interval, 0 disables.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(e *env.Env) *Controller {
	ctl := NewController(e)
	ctl.DeviceIndex = c.DeviceIndex
	ctl.Verbose = c.Verbose
	ctl.Mapping = c.Mapping
	ctl.Repeat = c.Repeat
	return ctl
}
