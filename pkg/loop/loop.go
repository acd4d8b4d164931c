// Package loop repeats a task until it asks to stop or its context is done.
//
// Workers of museflow are loops: each iteration claims one workflow execution,
// runs it and reports whether more work may be waiting.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after an iteration.
type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Continue the loop after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break the loop.
//
// Pass nil to stop without error.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is the body of a loop.
//
// It receives the value returned by the last iteration (or the initial value)
// and returns the value for the next one with a Next.
//
// The zero value of Next is Continue(0).
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task repeatedly.
//
// # Example
//
// Drain a queue, then stop:
//
//	Start(ctx, cursor, func(ctx context.Context, c Cursor) (Cursor, Next) {
//		next, claimed, err := queue.Claim(ctx, c)
//		if err != nil {
//			return c, Break(err)
//		}
//		if !claimed {
//			return next, Break(nil)
//		}
//		return next, Continue(0)
//	})
//
// # Args
//
// - ctx: when it is done, the loop breaks with ctx.Err().
//
// - init: the value passed to the first iteration.
//
// - task: the loop body.
//
// - options: per-iteration options.
//
// # Returns
//
// - T: the value returned by the last iteration. It is returned even with an error.
//
// - error: error passed to Break, or ctx.Err().
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down comes first.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// WithTimeout sets a deadline on the context passed to each iteration.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
