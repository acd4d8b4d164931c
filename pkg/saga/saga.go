// Package saga runs step graphs made of tasks, choices and parallel branches.
//
// A Definition is built once with Builder and run many times by Engine.
// Tasks are retried with exponential backoff and can have a catch handler,
// which runs when retries are exhausted.
// Side effects of succeeded steps are never rolled back.
package saga

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
)

// NodeID addresses a node in a Definition.
type NodeID int

// End is the end of a path.
//
// A path ending at End completes successfully.
const End NodeID = -1

// Action is the work of a task.
//
// Return an error wrapping ErrPermanent to stop retrying.
type Action[T any] func(ctx context.Context, input T) error

// Condition decides which path a Choice takes.
type Condition[T any] func(input T) bool

type node interface {
	nodeName() string
	self() *base
}

type base struct {
	name string
	next NodeID
}

func (b *base) nodeName() string { return b.name }
func (b *base) self() *base       { return b }

type taskNode[T any] struct {
	base
	action Action[T]
	retry  *RetryPolicy
	catch  NodeID
	once   string
}

type choiceNode[T any] struct {
	base
	cond      Condition[T]
	then      NodeID
	otherwise NodeID
}

type passNode struct {
	base
}

type branch struct {
	name  string
	start NodeID
}

type parallelNode struct {
	base
	branches []branch
}

type succeedNode struct {
	base
}

type failNode struct {
	base
	cause string
}

// Definition is an immutable step graph.
type Definition[T any] struct {
	name  string
	nodes []node
	start NodeID
}

func (d *Definition[T]) Name() string {
	return d.name
}

// Steps returns names of all tasks and branches, in the order they were added.
func (d *Definition[T]) Steps() []string {
	names := []string{}
	for _, n := range d.nodes {
		switch n := n.(type) {
		case *taskNode[T]:
			names = append(names, n.name)
		case *parallelNode:
			for _, b := range n.branches {
				names = append(names, b.name)
			}
		}
	}
	return names
}

// Journal remembers outcomes of steps across runs of the same execution.
//
// Tasks and branches which have succeeded are not run again.
type Journal interface {
	Outcome(step string) (domain.StepOutcome, bool)
	Record(ctx context.Context, step string, outcome domain.StepOutcome) error
}

// Observer is notified of task attempts and step outcomes.
type Observer interface {
	// StepAttempted is called after each invocation of a task action.
	StepAttempted(definition string, step string, err error)

	// StepFinished is called when a task or a branch gets its outcome.
	StepFinished(definition string, step string, outcome domain.StepOutcome)
}

type nopObserver struct{}

func (nopObserver) StepAttempted(string, string, error)              {}
func (nopObserver) StepFinished(string, string, domain.StepOutcome) {}

// Result of a run.
type Result struct {
	// Succeeded or Failed. Empty when Interrupted.
	Status domain.ExecutionStatus

	// outcomes of tasks and branches decided in the run, including ones from the journal.
	Outcomes map[string]domain.StepOutcome

	// why the run failed.
	Err error

	// The run was cancelled from outside (not by deadline).
	//
	// Catch handlers are not run, and failures are not recorded.
	// Running it again with the same journal resumes the work.
	Interrupted bool
}
