package mqtt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options *BrokerOptions
}

// DefaultDiscoverTimeout is how long Discover collects retained registrations.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, options: opts}, nil
}

// Discover implements Connector. Registrations are returned sorted by name.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := NewQueue(c.options)
	if err := WaitToken(ctx, q.Connect()); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh, stop := make(chan l1.ControllerInfo, 16), make(chan struct{})
	defer close(stop)
	q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		// an empty payload is a cleared registration.
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		select {
		case resCh <- controllerInfo(items[0], items[1], payload):
		case <-stop:
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	found := make(map[l1.ControllerRef]l1.ControllerInfo)
	for {
		select {
		case info := <-resCh:
			found[info.Ref] = info
		case <-timeout:
			return sortedInfo(found), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func sortedInfo(found map[l1.ControllerRef]l1.ControllerInfo) []l1.ControllerInfo {
	res := make([]l1.ControllerInfo, 0, len(found))
	for _, info := range found {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Ref.Name() < res[j].Ref.Name()
	})
	return res
}

func controllerInfo(typ, id string, meta []byte) l1.ControllerInfo {
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: typ, ID: id}}
	if err := json.Unmarshal(meta, &info.Meta); err != nil {
		glog.V(2).Infof("invalid meta of %s: %v", info.Ref.Name(), err)
	}
	return info
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: NewQueue(c.options)}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	if err := WaitToken(ctx, conn.Queue.Connect()); err != nil {
		conn.Queue.Close()
		return nil, err
	}
	glog.V(1).Infof("connected %s", ref.Name())
	return conn, nil
}

// ControllerConn implements ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// AddToLoop implements LoopAdder. The broker connection is closed
// when the loop stops.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	c.ControllerConn.AddToLoop(l)
	l.AddRunnable(fx.RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return c.Queue.Close()
	}))
}
