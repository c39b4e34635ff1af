package car

import (
	"flag"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	env "github.com/robotalks/arcadecar/pkg/l1/env/controller"
)

// Config defines the configuration for the car.
type Config struct {
	// Size is the diameter of the motor body.
	Size float64
	// Speed is the acceleration at full throttle.
	Speed float64
	// TurnSpeed is the full yaw rate in degrees per second.
	TurnSpeed float64
	// X, Y, Z is the spawn position of the car on the ground.
	X, Y, Z float64
	// Heading is the initial yaw in degrees, 0 facing -Z.
	Heading float64
	// InputTimeout resets the input to neutral when no input command
	// arrived for this long. 0 disables.
	InputTimeout time.Duration
}

// Defaults
const (
	DefaultSize         float64       = 2
	DefaultSpeed        float64       = 10
	DefaultTurnSpeed    float64       = 90
	DefaultInputTimeout time.Duration = 500 * time.Millisecond
)

var defaultConfig = Config{
	Size:         DefaultSize,
	Speed:        DefaultSpeed,
	TurnSpeed:    DefaultTurnSpeed,
	InputTimeout: DefaultInputTimeout,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Size, "car-size", defaultConfig.Size, "Size (diameter) of the motor body.")
	flag.Float64Var(&defaultConfig.Speed, "car-speed", defaultConfig.Speed, "Acceleration at full throttle.")
	flag.Float64Var(&defaultConfig.TurnSpeed, "car-turn-speed", defaultConfig.TurnSpeed, "Maximum turn speed (degrees/s).")
	flag.Float64Var(&defaultConfig.X, "car-x", defaultConfig.X, "Spawn position X.")
	flag.Float64Var(&defaultConfig.Y, "car-y", defaultConfig.Y, "Spawn position Y (ground level).")
	flag.Float64Var(&defaultConfig.Z, "car-z", defaultConfig.Z, "Spawn position Z.")
	flag.Float64Var(&defaultConfig.Heading, "car-heading", defaultConfig.Heading, "Initial heading (degrees), 0 faces -Z.")
	flag.DurationVar(&defaultConfig.InputTimeout, "input-timeout", defaultConfig.InputTimeout, "Reset input when no command received for the duration, 0 disables.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Position is the spawn position.
func (c *Config) Position() mgl64.Vec3 {
	return mgl64.Vec3{c.X, c.Y, c.Z}
}

// TurnSpeedRadians converts TurnSpeed to radians per second.
func (c *Config) TurnSpeedRadians() float64 {
	return mgl64.DegToRad(c.TurnSpeed)
}

// NewController spawns the car into w and creates its Controller.
func (c *Config) NewController(e *env.Env, w *ecs.World) *Controller {
	return NewController(e, w, *c)
}
