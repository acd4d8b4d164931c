package recurring

import (
	"context"

	"github.com/musecrm/museflow/pkg/loop"
)

// Task is a loop body which does not decide how the loop goes on by itself.
//
// # Returns
//
// - T: same as the value of loop.Task[T].
//
// - bool: true when the iteration did something, so more backlog can be.
//
// - error: the iteration failed.
type Task[T any] func(context.Context, T) (T, bool, error)

// Applied turns rt into a loop.Task which asks p how to proceed.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, t T) (T, loop.Next) {
		new, ok, err := rt(ctx, t)
		return new, p.Next(ok, err)
	}
}
