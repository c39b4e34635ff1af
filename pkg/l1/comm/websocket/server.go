package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
)

// DefaultPath is where the car accepts drivers.
const DefaultPath = "/car"

// InfoSuffix is appended to the path to describe the car.
const InfoSuffix = "/info"

// Server is a Registrar accepting drivers over WebSocket.
type Server struct {
	Addr string
	Path string
	Info l1.ControllerInfo

	hub comm.Hub
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, info l1.ControllerInfo) *Server {
	return &Server{Addr: addr, Path: DefaultPath, Info: info}
}

// URL is the registry URL drivers connect with.
func (s *Server) URL() string {
	host := s.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + s.Path
}

// Handler serves both the WebSocket endpoint and the info document.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(func(conn *websocket.Conn) {
		err := s.hub.Serve(conn.Request().Context(), New(conn))
		if err != nil && !errors.Is(err, context.Canceled) {
			glog.V(1).Infof("driver %s: %v", conn.Request().RemoteAddr, err)
		}
	}))
	mux.HandleFunc(s.Path+InfoSuffix, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]l1.ControllerInfo{s.Info}); err != nil {
			glog.Warningf("write info: %v", err)
		}
	})
	return mux
}

// Connections returns the number of connected drivers.
func (s *Server) Connections() int {
	return s.hub.Connections()
}

// SendEvent implements Registrar.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	return s.hub.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.Add(&s.hub)
	l.AddRunnable(fx.NamedRun("ws"+s.Addr, s))
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	glog.Infof("accepting drivers on %s", ln.Addr())
	err = fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		return srv.Serve(ln)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
