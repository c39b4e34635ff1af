package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1"
	"github.com/robotalks/arcadecar/pkg/l1/comm"
)

// Registrar implements l1.Registrar using MQTT. The registration is a
// retained message on <type>/<id>/meta, cleared by the will on
// disconnect.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	metaJSON  string
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	opts, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.Client.SetBinaryWill(opts.TopicPrefix+metaTopic(info.Ref), nil, 1, true)
	if opts.Client.ClientID == "" {
		opts.Client.SetClientID("arcade:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:    NewQueue(opts),
		Info:     info,
		metaJSON: string(meta),
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt:"+r.Info.Ref.Name(), r))
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	glog.Infof("registering %s", r.Info.Ref.Name())
	r.Queue.Connect()
	<-ctx.Done()
	// clear the registration; the will only covers abnormal disconnects.
	r.Queue.PubWith(metaTopic(r.Info.Ref), nil, 1, true).WaitTimeout(time.Second)
	r.Queue.Close()
	return nil
}

func (r *Registrar) onConnected() {
	glog.V(1).Infof("%s registered", r.Info.Ref.Name())
	r.Queue.PubWith(metaTopic(r.Info.Ref), []byte(r.metaJSON), 1, true)
}

func metaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/meta"
}
