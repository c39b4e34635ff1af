package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerWait(t *testing.T) {
	errBroken := errors.New("broken")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(
		NamedRun("broken", RunnableFunc(func(context.Context) error { return errBroken })),
		RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	cancel()
	err := r.Wait()
	require.Error(t, err)
	require.ErrorIs(t, err, errBroken)
	require.Contains(t, err.Error(), "broken: broken")
	require.Len(t, err.(*AggregatedError).Errors, 1)
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var closed int
	closer := closerFunc(func() error {
		if closed++; closed == 1 {
			close(unblock)
		}
		return nil
	})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)

	closed = 0
	unblock = make(chan struct{})
	close(unblock)
	closer = closerFunc(func() error { closed++; return nil })
	require.NoError(t, RunWithContextCloser(context.Background(), closer, func() error {
		<-unblock
		return nil
	}))
	require.Equal(t, 1, closed)
}
