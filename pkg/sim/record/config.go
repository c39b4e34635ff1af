package record

import (
	"flag"
	"os"
)

// Config represents configuration for the recorder.
type Config struct {
	// DSN is the SQLite database to record into. Empty disables recording.
	DSN string
}

var defaultConfig = Config{}

func init() {
	if val := os.Getenv("ARCADE_RECORD"); val != "" {
		defaultConfig.DSN = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DSN, "record", defaultConfig.DSN, "Record car states into SQLite database file, empty disables")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled indicates recording is configured.
func (c *Config) Enabled() bool {
	return c.DSN != ""
}

// NewRecorder opens the configured database.
func (c *Config) NewRecorder() (*Recorder, error) {
	return Open(c.DSN)
}
