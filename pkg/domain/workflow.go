package domain

import (
	"fmt"
	"strings"
	"time"
)

type Operation string

const (
	Create Operation = "create"
	Update Operation = "update"
	Delete Operation = "delete"
)

func (o Operation) String() string {
	return string(o)
}

func AsOperation(s string) (Operation, error) {
	switch s {
	case string(Create):
		return Create, nil
	case string(Update):
		return Update, nil
	case string(Delete):
		return Delete, nil
	default:
		return "", fmt.Errorf("'%s' is not Operation", s)
	}
}

// WorkflowType is a lifecycle operation on an entity type.
type WorkflowType struct {
	Entity    EntityType
	Operation Operation
}

// String returns a name like "create-exhibit".
func (w WorkflowType) String() string {
	return fmt.Sprintf("%s-%s", w.Operation, w.Entity)
}

func AsWorkflowType(s string) (WorkflowType, error) {
	op, ent, ok := strings.Cut(s, "-")
	if !ok {
		return WorkflowType{}, fmt.Errorf("'%s' is not WorkflowType", s)
	}
	o, err := AsOperation(op)
	if err != nil {
		return WorkflowType{}, fmt.Errorf("'%s' is not WorkflowType: %w", s, err)
	}
	e, err := AsEntityType(ent)
	if err != nil {
		return WorkflowType{}, fmt.Errorf("'%s' is not WorkflowType: %w", s, err)
	}
	return WorkflowType{Entity: e, Operation: o}, nil
}

// WorkflowTypes returns all 9 workflow types.
func WorkflowTypes() []WorkflowType {
	ret := make([]WorkflowType, 0, 9)
	for _, e := range EntityTypes() {
		for _, o := range []Operation{Create, Update, Delete} {
			ret = append(ret, WorkflowType{Entity: e, Operation: o})
		}
	}
	return ret
}

type ExecutionStatus string

const (
	// The execution is queued and not claimed by any worker yet.
	Waiting ExecutionStatus = "waiting"

	// A worker has claimed the execution and holds its lease.
	Running ExecutionStatus = "running"

	// Terminal. Every step has succeeded or been skipped.
	Succeeded ExecutionStatus = "succeeded"

	// Terminal. At least one step has failed.
	Failed ExecutionStatus = "failed"
)

func (s ExecutionStatus) String() string {
	return string(s)
}

func (s ExecutionStatus) Terminal() bool {
	return s == Succeeded || s == Failed
}

func AsExecutionStatus(s string) (ExecutionStatus, error) {
	switch s {
	case string(Waiting):
		return Waiting, nil
	case string(Running):
		return Running, nil
	case string(Succeeded):
		return Succeeded, nil
	case string(Failed):
		return Failed, nil
	default:
		return "", fmt.Errorf("'%s' is not ExecutionStatus", s)
	}
}

// StepOutcome is the result of a step or a branch.
type StepOutcome string

const (
	Success StepOutcome = "success"
	Failure StepOutcome = "failed"

	// The step has nothing to do, because its input is absent.
	Skipped StepOutcome = "skipped"
)

func (o StepOutcome) String() string {
	return string(o)
}

func AsStepOutcome(s string) (StepOutcome, error) {
	switch s {
	case string(Success):
		return Success, nil
	case string(Failure):
		return Failure, nil
	case string(Skipped):
		return Skipped, nil
	default:
		return "", fmt.Errorf("'%s' is not StepOutcome", s)
	}
}

// Execution is a durable record of a workflow run.
//
// It is created by the trigger, mutated only by the orchestrator, and never deleted.
type Execution struct {
	ExecutionId string
	Workflow    WorkflowType
	Entity      EntityRef
	Actor       Actor
	Assets      AssetBundle

	Status ExecutionStatus

	// outcome of each step and branch, by name.
	Outcomes map[string]StepOutcome

	// why the execution failed. Empty unless Failed.
	Failure string

	// how many times workers have claimed this execution.
	Attempt int

	// the worker holding the execution should finish it by this time.
	// Otherwise other workers can claim it again.
	LeaseUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExecutionRequest is what the trigger asks to start.
type ExecutionRequest struct {
	ExecutionId string
	Workflow    WorkflowType

	// Entity to be created, updated or deleted.
	//
	// For update, LanguageVariants replace the current ones when not nil.
	// For delete, only Id and Type are used.
	Entity Entity

	Actor  Actor
	Assets AssetBundle
}

// ExecutionCursor carries state between claims of a worker.
type ExecutionCursor struct {
	// Id of the execution claimed last time.
	//
	// Executions with greater ids are preferred next, so claims rotate.
	Head string

	// How long a claim lasts.
	Lease time.Duration
}

func (c ExecutionCursor) Equal(other ExecutionCursor) bool {
	return c.Head == other.Head && c.Lease == other.Lease
}
