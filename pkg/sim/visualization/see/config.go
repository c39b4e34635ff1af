package see

import (
	"flag"
	"io"
	"os"
)

// Config represents configuration for see.
type Config struct {
	// W and H are the arena size in world units, centered at origin.
	W float64
	H float64
	// Disabled suppresses output.
	Disabled bool
	// Output receives one JSON array of messages per line.
	Output io.Writer
}

var defaultConfig = Config{
	W:      200,
	H:      200,
	Output: os.Stdout,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.W, "see-w", defaultConfig.W, "Width (world X) of visualization area")
	flag.Float64Var(&defaultConfig.H, "see-h", defaultConfig.H, "Height (world Z) of visualization area")
	flag.BoolVar(&defaultConfig.Disabled, "no-see", defaultConfig.Disabled, "Do not write visualization messages to stdout")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config.
func (c *Config) NewAdapter() *Adapter {
	conf := *c
	if conf.Disabled {
		conf.Output = nil
	}
	return NewAdapter(&conf)
}
