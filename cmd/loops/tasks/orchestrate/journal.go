package orchestrate

import (
	"context"
	"sync"

	"github.com/musecrm/museflow/pkg/domain"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	"github.com/musecrm/museflow/pkg/saga"
)

// journal keeps outcomes of an execution in the queue.
//
// It starts from outcomes recorded by earlier claims.
type journal struct {
	queue       kworkflow.WorkflowInterface
	executionId string

	mu       sync.Mutex
	outcomes map[string]domain.StepOutcome
}

var _ saga.Journal = &journal{}

func NewJournal(queue kworkflow.WorkflowInterface, exec domain.Execution) saga.Journal {
	outcomes := make(map[string]domain.StepOutcome, len(exec.Outcomes))
	for k, v := range exec.Outcomes {
		outcomes[k] = v
	}
	return &journal{queue: queue, executionId: exec.ExecutionId, outcomes: outcomes}
}

func (j *journal) Outcome(step string) (domain.StepOutcome, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	o, ok := j.outcomes[step]
	return o, ok
}

func (j *journal) Record(ctx context.Context, step string, outcome domain.StepOutcome) error {
	if err := j.queue.Record(ctx, j.executionId, step, outcome); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes[step] = outcome
	return nil
}
