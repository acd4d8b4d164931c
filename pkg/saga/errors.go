package saga

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDefinition is returned by Build for broken graphs.
	ErrInvalidDefinition = errors.New("invalid saga definition")

	// ErrInterrupted is the cause of a run cancelled from outside.
	ErrInterrupted = errors.New("saga is interrupted")
)

// StepError is the failure of a task after all retries.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailError is returned when a path reaches a Fail node.
type FailError struct {
	Step  string
	Cause string

	// the failure leading to the Fail node, if any.
	Err error
}

func (e *FailError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Cause, e.Err)
}

func (e *FailError) Unwrap() error {
	return e.Err
}
