package controller

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
	"github.com/robotalks/arcadecar/pkg/l1/comm/mqtt"
	"github.com/robotalks/arcadecar/pkg/l1/comm/websocket"
	"github.com/robotalks/arcadecar/pkg/l1/env"
)

// Config provides common options to expose a car to remote drivers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	// Remote control is disabled when empty.
	MQTTBrokerURL string

	// ListenAddr accepts drivers directly over WebSocket when set.
	ListenAddr string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/arcade/",
}

func init() {
	if val := os.Getenv("ARCADE_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ARCADE_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty disables the broker")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "Accept drivers directly over WebSocket on the address, e.g. :8080")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env wires a controller to its registrars.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config. An Env without registrars is valid:
// the controller then only runs locally.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.ListenAddr != "" {
		srv := websocket.NewServer(c.ListenAddr, c.Info)
		env.Registrar.Add(srv)
		env.RegistryURLs = append(env.RegistryURLs, srv.URL())
	}
	if len(env.Registrar.Registrars) == 0 {
		glog.Warningf("%s: no registrar configured, remote control disabled", c.Info.Ref.Name())
	}
	return env, nil
}

// MustNewEnv creates Env and exits on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		glog.Exit(err)
	}
	return env
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
