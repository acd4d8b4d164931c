package loop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/musecrm/museflow/pkg/loop"
)

func TestStart(t *testing.T) {
	t.Run("it repeats the task until it breaks without error", func(t *testing.T) {
		actual, err := loop.Start(
			context.Background(), 1,
			func(_ context.Context, v int) (int, loop.Next) {
				if 10 <= v {
					return v, loop.Break(nil)
				}
				return v + 1, loop.Continue(0)
			},
		)
		if err != nil {
			t.Fatal(err)
		}
		if actual != 10 {
			t.Errorf("actual=%d, expect=%d", actual, 10)
		}
	})

	t.Run("it returns an error passed to Break with the last value", func(t *testing.T) {
		expectedErr := errors.New("fake")
		actual, err := loop.Start(
			context.Background(), 0,
			func(_ context.Context, v int) (int, loop.Next) {
				if v == 3 {
					return v, loop.Break(expectedErr)
				}
				return v + 1, loop.Continue(0)
			},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("err: actual=%v, expect=%v", err, expectedErr)
		}
		if actual != 3 {
			t.Errorf("actual=%d, expect=%d", actual, 3)
		}
	})

	t.Run("it does not start when the context is already done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		actual, err := loop.Start(
			ctx, 42,
			func(_ context.Context, v int) (int, loop.Next) {
				called = true
				return v, loop.Continue(0)
			},
		)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err: actual=%v, expect=%v", err, context.Canceled)
		}
		if called {
			t.Error("task is called")
		}
		if actual != 42 {
			t.Errorf("actual=%d, expect=%d", actual, 42)
		}
	})

	t.Run("it stops waiting the interval when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		before := time.Now()
		_, err := loop.Start(
			ctx, 0,
			func(_ context.Context, v int) (int, loop.Next) {
				return v + 1, loop.Continue(time.Hour)
			},
		)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err: actual=%v, expect=%v", err, context.DeadlineExceeded)
		}
		if elapsed := time.Since(before); time.Second < elapsed {
			t.Errorf("loop waits too long: %s", elapsed)
		}
	})

	t.Run("it passes a deadlined context when WithTimeout is passed", func(t *testing.T) {
		timeout := 100 * time.Millisecond
		hasDeadline := false
		_, err := loop.Start(
			context.Background(), 0,
			func(ctx context.Context, v int) (int, loop.Next) {
				deadline, ok := ctx.Deadline()
				hasDeadline = ok && time.Until(deadline) <= timeout
				return v, loop.Break(nil)
			},
			loop.WithTimeout(timeout),
		)
		if err != nil {
			t.Fatal(err)
		}
		if !hasDeadline {
			t.Error("context passed to the task has no deadline")
		}
	})
}
