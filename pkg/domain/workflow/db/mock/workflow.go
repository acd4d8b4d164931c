package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/musecrm/museflow/pkg/domain"
	dbmock "github.com/musecrm/museflow/pkg/domain/internal/db/mock"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
)

type RecordCall struct {
	ExecutionId string
	Step        string
	Outcome     domain.StepOutcome
}

type FinishCall struct {
	ExecutionId string
	Status      domain.ExecutionStatus
	Failure     string
}

type WorkflowInterface struct {
	Impl struct {
		Start  func(ctx context.Context, req domain.ExecutionRequest) (domain.Execution, error)
		Claim  func(ctx context.Context, cursor domain.ExecutionCursor) (domain.Execution, domain.ExecutionCursor, bool, error)
		Record func(ctx context.Context, executionId string, step string, outcome domain.StepOutcome) error
		Finish func(ctx context.Context, executionId string, status domain.ExecutionStatus, failure string) (domain.Execution, error)
		Get    func(ctx context.Context, executionId string) (domain.Execution, error)
	}

	Calls struct {
		Start  dbmock.CallLog[domain.ExecutionRequest]
		Claim  dbmock.CallLog[domain.ExecutionCursor]
		Record dbmock.CallLog[RecordCall]
		Finish dbmock.CallLog[FinishCall]
		Get    dbmock.CallLog[string]
	}

	mu sync.Mutex
}

func NewWorkflowInterface() *WorkflowInterface {
	return &WorkflowInterface{}
}

var _ kworkflow.WorkflowInterface = &WorkflowInterface{}

func (m *WorkflowInterface) Start(ctx context.Context, req domain.ExecutionRequest) (domain.Execution, error) {
	m.mu.Lock()
	m.Calls.Start = append(m.Calls.Start, req)
	m.mu.Unlock()
	if m.Impl.Start != nil {
		return m.Impl.Start(ctx, req)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkflowInterface) Claim(ctx context.Context, cursor domain.ExecutionCursor) (domain.Execution, domain.ExecutionCursor, bool, error) {
	m.mu.Lock()
	m.Calls.Claim = append(m.Calls.Claim, cursor)
	m.mu.Unlock()
	if m.Impl.Claim != nil {
		return m.Impl.Claim(ctx, cursor)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkflowInterface) Record(ctx context.Context, executionId string, step string, outcome domain.StepOutcome) error {
	m.mu.Lock()
	m.Calls.Record = append(m.Calls.Record, RecordCall{ExecutionId: executionId, Step: step, Outcome: outcome})
	m.mu.Unlock()
	if m.Impl.Record != nil {
		return m.Impl.Record(ctx, executionId, step, outcome)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkflowInterface) Finish(ctx context.Context, executionId string, status domain.ExecutionStatus, failure string) (domain.Execution, error) {
	m.mu.Lock()
	m.Calls.Finish = append(m.Calls.Finish, FinishCall{ExecutionId: executionId, Status: status, Failure: failure})
	m.mu.Unlock()
	if m.Impl.Finish != nil {
		return m.Impl.Finish(ctx, executionId, status, failure)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkflowInterface) Get(ctx context.Context, executionId string) (domain.Execution, error) {
	m.mu.Lock()
	m.Calls.Get = append(m.Calls.Get, executionId)
	m.mu.Unlock()
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, executionId)
	}
	panic(errors.New("it should not be called"))
}
