package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm/mqtt"
	"github.com/robotalks/arcadecar/pkg/l1/comm/websocket"
)

// Config provides common options for drivers connecting to a car.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL specifies the URL of controller registry.
	// e.g. mqtt://host:port/topic-prefix for a broker, or
	// http://host:port/car for a car accepting drivers directly.
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: l1.CarControllerType},
	RegistryURL: "mqtt://localhost:1883/arcade/",
}

func init() {
	if val := os.Getenv("ARCADE_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("ARCADE_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("ARCADE_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "car-type", defaultConfig.Ref.Type, "Car controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "car-id", defaultConfig.Ref.ID, "Car ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "car-reg", defaultConfig.RegistryURL, "Car registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "tcp", "ws", "wss", "ssl":
		return mqtt.NewConnector(c.RegistryURL)
	case "http", "https":
		return websocket.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and exits on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		glog.Exit(err)
	}
	return conn
}

// Connect directly connects to the configured car.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("car type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}

// MustConnect connects to the configured car and exits on error.
func (c *Config) MustConnect(ctx context.Context) l1.ControllerConn {
	conn, err := c.Connect(ctx)
	if err != nil {
		glog.Exit(err)
	}
	return conn
}
