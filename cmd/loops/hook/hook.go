// Package hook notifies external endpoints of executions around each run.
package hook

import (
	"context"
	"errors"
)

// Hook is called around a run of an execution.
//
// Before is called after the execution is claimed, and After is called once it is finished.
// Failures of hooks do not change executions.
type Hook[T any] interface {
	Before(context.Context, T) error
	After(context.Context, T) error
}

var ErrHookFailed = errors.New("hook failed")

// None is a hook doing nothing.
type None[T any] struct{}

func (None[T]) Before(context.Context, T) error { return nil }

func (None[T]) After(context.Context, T) error { return nil }
