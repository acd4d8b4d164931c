package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/musecrm/museflow/pkg/cdn"
)

type Invalidation struct {
	CallerReference string
	Patterns        []string
}

type Invalidator struct {
	Impl struct {
		Invalidate func(ctx context.Context, callerReference string, patterns []string) error
	}

	Calls struct {
		Invalidate []Invalidation
	}

	mu sync.Mutex
}

var _ cdn.Invalidator = &Invalidator{}

func New() *Invalidator {
	return &Invalidator{}
}

func (m *Invalidator) Invalidate(ctx context.Context, callerReference string, patterns []string) error {
	m.mu.Lock()
	m.Calls.Invalidate = append(m.Calls.Invalidate, Invalidation{CallerReference: callerReference, Patterns: patterns})
	m.mu.Unlock()
	if m.Impl.Invalidate != nil {
		return m.Impl.Invalidate(ctx, callerReference, patterns)
	}
	panic(errors.New("it should not be called"))
}

func (m *Invalidator) Invalidations() []Invalidation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Invalidation{}, m.Calls.Invalidate...)
}
