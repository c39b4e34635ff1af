package physics

import (
	"context"
	"time"
)

// StepContext is a Context with fixed time values.
type StepContext struct {
	now     time.Time
	elapsed time.Duration
	ctx     context.Context
}

// Now creates a Context at current time with no elapsed time.
func Now(ctx context.Context) Context {
	return &StepContext{now: time.Now(), ctx: ctx}
}

// Fixed creates a Context at now which advances by elapsed.
func Fixed(ctx context.Context, now time.Time, elapsed time.Duration) Context {
	return &StepContext{now: now, elapsed: elapsed, ctx: ctx}
}

// Time implements TimeSource.
func (c StepContext) Time() time.Time {
	return c.now
}

// Elapsed implements StepSource.
func (c StepContext) Elapsed() time.Duration {
	return c.elapsed
}

// Context implements Context.
func (c StepContext) Context() context.Context {
	return c.ctx
}
