package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
)

// Connector implements l1.Connector for a car accepting drivers directly.
type Connector struct {
	URL    *url.URL
	Client *http.Client
}

// NewConnector creates a Connector from an http(s) URL of the car path.
func NewConnector(carURL string) (*Connector, error) {
	u, err := url.Parse(carURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	return &Connector{URL: u, Client: http.DefaultClient}, nil
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	infoURL := *c.URL
	infoURL.Path += InfoSuffix
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover %s: %s", infoURL.String(), resp.Status)
	}
	var infoList []l1.ControllerInfo
	if err := json.NewDecoder(resp.Body).Decode(&infoList); err != nil {
		return nil, fmt.Errorf("decode info: %w", err)
	}
	return infoList, nil
}

// Connect implements l1.Connector. The server only hosts one car, so
// ref is checked against its info when given.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	if ref.IsValid() {
		infoList, err := c.Discover(ctx)
		if err != nil {
			return nil, err
		}
		if !containsRef(infoList, ref) {
			return nil, fmt.Errorf("%s not served at %s", ref.Name(), c.URL)
		}
	}
	wsURL := *c.URL
	wsURL.Scheme = "ws"
	if c.URL.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	conf, err := websocket.NewConfig(wsURL.String(), c.URL.String())
	if err != nil {
		return nil, err
	}
	ws, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, err
	}
	conn := &comm.ControllerConn{}
	conn.Init(New(ws))
	return conn, nil
}

func containsRef(infoList []l1.ControllerInfo, ref l1.ControllerRef) bool {
	for _, info := range infoList {
		if info.Ref == ref {
			return true
		}
	}
	return false
}
