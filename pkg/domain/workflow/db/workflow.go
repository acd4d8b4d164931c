package db

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
)

// WorkflowInterface is the durable queue of workflow executions.
type WorkflowInterface interface {
	// Start accepts a mutation request and queues its execution, in one transaction.
	//
	// Along with the execution, the entity is written and the subscription lock is acquired:
	//
	// - create: the entity is inserted as PENDING. Its parent should exist, be mutable and belong to the same subscription.
	//
	// - update: language variants are replaced (when given). The status is kept.
	//
	// - delete: the entity is set DELETING.
	//
	// When any of them fails, nothing is changed.
	//
	// Returns
	//
	// - domain.Execution: the queued execution, in waiting status.
	//
	// - error: ErrSubscriptionLocked, ErrInvalidParent, ErrMissing (for update/delete),
	// ErrInvalidStatusChanging (for update/delete of deleting/deleted entities)
	// or ErrConflict (for duplicated ids).
	Start(ctx context.Context, req domain.ExecutionRequest) (domain.Execution, error)

	// Claim picks an execution to be run, and sets it running.
	//
	// Waiting executions and running executions whose lease has expired can be picked.
	// Executions after the cursor head are preferred.
	//
	// Returns
	//
	// - domain.Execution: the claimed execution. Its attempt is incremented and its lease is renewed.
	//
	// - domain.ExecutionCursor: cursor moved to the claimed execution, or the same one when nothing is claimed.
	//
	// - bool: true when an execution is claimed.
	//
	// - error
	Claim(ctx context.Context, cursor domain.ExecutionCursor) (domain.Execution, domain.ExecutionCursor, bool, error)

	// Record stores the outcome of a step or a branch of a running execution.
	//
	// Returns
	//
	// - error: ErrMissing, or ErrInvalidStatusChanging when the execution is not running.
	Record(ctx context.Context, executionId string, step string, outcome domain.StepOutcome) error

	// Finish moves a running execution to the terminal status.
	//
	// Returns
	//
	// - domain.Execution: the finished execution.
	//
	// - error: ErrMissing, or ErrInvalidStatusChanging when the execution is not running
	// or status is not terminal.
	Finish(ctx context.Context, executionId string, status domain.ExecutionStatus, failure string) (domain.Execution, error)

	// Get the execution.
	//
	// Returns
	//
	// - error: ErrMissing when no such execution is found.
	Get(ctx context.Context, executionId string) (domain.Execution, error)
}
