package saga

import (
	"context"
	"sync"

	"github.com/musecrm/museflow/pkg/domain"
)

// MemoryJournal is a Journal on memory.
type MemoryJournal struct {
	mu       sync.Mutex
	outcomes map[string]domain.StepOutcome
}

var _ Journal = &MemoryJournal{}

// NewMemoryJournal returns a journal knowing outcomes initially.
func NewMemoryJournal(initial map[string]domain.StepOutcome) *MemoryJournal {
	o := make(map[string]domain.StepOutcome, len(initial))
	for k, v := range initial {
		o[k] = v
	}
	return &MemoryJournal{outcomes: o}
}

func (j *MemoryJournal) Outcome(step string) (domain.StepOutcome, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	o, ok := j.outcomes[step]
	return o, ok
}

func (j *MemoryJournal) Record(_ context.Context, step string, outcome domain.StepOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes[step] = outcome
	return nil
}

// Outcomes returns a copy of recorded outcomes.
func (j *MemoryJournal) Outcomes() map[string]domain.StepOutcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	ret := make(map[string]domain.StepOutcome, len(j.outcomes))
	for k, v := range j.outcomes {
		ret[k] = v
	}
	return ret
}
