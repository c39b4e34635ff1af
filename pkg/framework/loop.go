package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the tick interval of a Loop without Interval.
const DefaultInterval = 100 * time.Millisecond

// Loop runs registered controllers stage by stage on every tick.
// Messages posted before a tick are visible to every stage of that tick
// and dropped if nothing takes them.
type Loop struct {
	Interval time.Duration
	// Timestep is the simulated time of a single iteration. When zero,
	// the wall-clock time since the previous iteration is used.
	Timestep time.Duration

	stages  [PriorityLevels][]Controller
	runners []Runnable

	lock     sync.Mutex
	posted   []Message
	lastTime time.Time
	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets the LoopControl of the loop running ctx.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController appends controllers to the stage at priorityLevel.
// Controllers which are also Runnable are run along with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.stages[priorityLevel] = append(l.stages[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run ticks the loop until ctx is done, then waits for the Runnables.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Step(ctx, now)
		case <-l.wakeUpCh:
			// fixed-step loops only advance on ticks.
			if l.Timestep == 0 {
				l.Step(ctx, time.Now())
			}
		}
	}
}

// RunOrFail runs the loop until SIGINT or SIGTERM. Use it in main.
func (l *Loop) RunOrFail() {
	runner := NewRunner().HandleSignals()
	if err := l.Run(runner.Context); err != nil && err != context.Canceled {
		glog.Fatalf("loop stopped: %v", err)
	}
}

// PostMessage implements LoopControl. It is safe to call from any goroutine.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.posted = append(l.posted, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Step runs a single iteration through all priority levels.
// Iterations must not overlap.
func (l *Loop) Step(ctx context.Context, now time.Time) {
	iter := &loopIteration{Loop: l, time: now}
	switch {
	case l.Timestep > 0:
		iter.elapsed = l.Timestep
	case !l.lastTime.IsZero() && now.After(l.lastTime):
		iter.elapsed = now.Sub(l.lastTime)
	}
	l.lastTime = now
	l.lock.Lock()
	iter.messages, l.posted = l.posted, nil
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey, ControlContext(iter))
	for level, ctls := range l.stages {
		iter.priorityLevel = level
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error at level %d: %v", level, err)
			}
		}
	}
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	elapsed       time.Duration
	priorityLevel int
	messages      []Message
}

func (t *loopIteration) Context() context.Context { return t.ctx }
func (t *loopIteration) Time() time.Time          { return t.time }
func (t *loopIteration) Elapsed() time.Duration   { return t.elapsed }
func (t *loopIteration) PriorityLevel() int       { return t.priorityLevel }
func (t *loopIteration) Messages() MessageStore   { return t }

// ProcessMessages implements MessageStore. Messages added while
// processing are kept after the ones not taken.
func (t *loopIteration) ProcessMessages(proc MessageProcessor) {
	pending := t.messages
	t.messages = nil
	var remains []Message
	for n, msg := range pending {
		mctx := &messageContext{iter: t, msg: msg}
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains = append(remains, msg)
		}
		if mctx.stop {
			remains = append(remains, pending[n+1:]...)
			break
		}
	}
	t.messages = append(remains, t.messages...)
}

// AddMessages implements MessageAppender.
func (t *loopIteration) AddMessages(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

type messageContext struct {
	iter  *loopIteration
	msg   Message
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.iter.AddMessages(msgs...) }
