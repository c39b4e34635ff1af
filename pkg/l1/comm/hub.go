package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// Hub is a Registrar for drivers connecting directly, one pipe each.
// Commands from all pipes are posted to the loop the Hub runs in and
// events are broadcast to every pipe.
type Hub struct {
	once    sync.Once
	ready   chan struct{}
	loopCtx context.Context

	lock  sync.Mutex
	pipes map[*Pipe]struct{}
}

func (h *Hub) init() {
	h.once.Do(func() {
		h.ready = make(chan struct{})
		h.pipes = make(map[*Pipe]struct{})
	})
}

// Run implements Runnable. It binds the Hub to the loop running it.
func (h *Hub) Run(ctx context.Context) error {
	h.init()
	h.loopCtx = ctx
	close(h.ready)
	<-ctx.Done()
	return ctx.Err()
}

// AddToLoop implements LoopAdder.
func (h *Hub) AddToLoop(l *fx.Loop) {
	l.AddRunnable(h)
}

// Serve exchanges messages over rw until it fails or either ctx or the
// loop is done.
func (h *Hub) Serve(ctx context.Context, rw PacketReadWriter) error {
	h.init()
	select {
	case <-h.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(h.loopCtx, cancel)
	defer stop()

	pipe := NewPipe(rw)
	pipe.Handler = postToLoop(pipe)
	h.lock.Lock()
	h.pipes[pipe] = struct{}{}
	count := len(h.pipes)
	h.lock.Unlock()
	glog.V(1).Infof("driver connected, %d total", count)
	defer func() {
		h.lock.Lock()
		delete(h.pipes, pipe)
		h.lock.Unlock()
		glog.V(1).Info("driver disconnected")
	}()
	return fx.RunWithContextCloser(ctx, pipe, func() error {
		return pipe.Run(h.loopCtx)
	})
}

// Connections returns the number of connected pipes.
func (h *Hub) Connections() int {
	h.init()
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.pipes)
}

// SendEvent implements Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	h.init()
	h.lock.Lock()
	pipes := make([]*Pipe, 0, len(h.pipes))
	for pipe := range h.pipes {
		pipes = append(pipes, pipe)
	}
	h.lock.Unlock()
	var errs fx.AggregatedError
	for _, pipe := range pipes {
		errs.Add(pipe.SendEventMsg(msg))
	}
	return errs.Aggregate()
}
