package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/musecrm/museflow/pkg/domain"
	dbmock "github.com/musecrm/museflow/pkg/domain/internal/db/mock"
	ksubscription "github.com/musecrm/museflow/pkg/domain/subscription/db"
)

type Lock struct {
	SubscriptionId string
	Holder         string
}

type SubscriptionInterface struct {
	Impl struct {
		Acquire func(ctx context.Context, subscriptionId string, holder string) error
		Release func(ctx context.Context, subscriptionId string, holder string) (bool, error)
		Get     func(ctx context.Context, subscriptionId string) (domain.SubscriptionLock, error)
	}

	Calls struct {
		Acquire dbmock.CallLog[Lock]
		Release dbmock.CallLog[Lock]
		Get     dbmock.CallLog[string]
	}

	mu sync.Mutex
}

func NewSubscriptionInterface() *SubscriptionInterface {
	return &SubscriptionInterface{}
}

var _ ksubscription.SubscriptionInterface = &SubscriptionInterface{}

func (m *SubscriptionInterface) Acquire(ctx context.Context, subscriptionId string, holder string) error {
	m.mu.Lock()
	m.Calls.Acquire = append(m.Calls.Acquire, Lock{SubscriptionId: subscriptionId, Holder: holder})
	m.mu.Unlock()
	if m.Impl.Acquire != nil {
		return m.Impl.Acquire(ctx, subscriptionId, holder)
	}
	panic(errors.New("it should not be called"))
}

func (m *SubscriptionInterface) Release(ctx context.Context, subscriptionId string, holder string) (bool, error) {
	m.mu.Lock()
	m.Calls.Release = append(m.Calls.Release, Lock{SubscriptionId: subscriptionId, Holder: holder})
	m.mu.Unlock()
	if m.Impl.Release != nil {
		return m.Impl.Release(ctx, subscriptionId, holder)
	}
	panic(errors.New("it should not be called"))
}

func (m *SubscriptionInterface) Get(ctx context.Context, subscriptionId string) (domain.SubscriptionLock, error) {
	m.mu.Lock()
	m.Calls.Get = append(m.Calls.Get, subscriptionId)
	m.mu.Unlock()
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, subscriptionId)
	}
	panic(errors.New("it should not be called"))
}
