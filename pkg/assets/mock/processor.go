package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/musecrm/museflow/pkg/assets"
)

type Processor struct {
	Impl struct {
		Process func(ctx context.Context, job assets.Job) error
	}

	Calls struct {
		Process []assets.Job
	}

	mu sync.Mutex
}

var _ assets.Processor = &Processor{}

func New() *Processor {
	return &Processor{}
}

func (m *Processor) Process(ctx context.Context, job assets.Job) error {
	m.mu.Lock()
	m.Calls.Process = append(m.Calls.Process, job)
	m.mu.Unlock()
	if m.Impl.Process != nil {
		return m.Impl.Process(ctx, job)
	}
	panic(errors.New("it should not be called"))
}

// Jobs returns jobs passed so far.
func (m *Processor) Jobs() []assets.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]assets.Job{}, m.Calls.Process...)
}
