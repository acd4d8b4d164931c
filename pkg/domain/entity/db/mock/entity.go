package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/musecrm/museflow/pkg/domain"
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	dbmock "github.com/musecrm/museflow/pkg/domain/internal/db/mock"
)

type EntityInterface struct {
	Impl struct {
		Get                    func(ctx context.Context, id string) (domain.Entity, error)
		SetStatus              func(ctx context.Context, typ domain.EntityType, id string, status domain.EntityStatus) error
		MarkDescendantsDeleted func(ctx context.Context, id string) ([]string, error)
	}

	Calls struct {
		Get       dbmock.CallLog[string]
		SetStatus dbmock.CallLog[struct {
			Type   domain.EntityType
			Id     string
			Status domain.EntityStatus
		}]
		MarkDescendantsDeleted dbmock.CallLog[string]
	}

	mu sync.Mutex
}

func NewEntityInterface() *EntityInterface {
	return &EntityInterface{}
}

var _ kentity.EntityInterface = &EntityInterface{}

func (m *EntityInterface) Get(ctx context.Context, id string) (domain.Entity, error) {
	m.mu.Lock()
	m.Calls.Get = append(m.Calls.Get, id)
	m.mu.Unlock()
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) SetStatus(ctx context.Context, typ domain.EntityType, id string, status domain.EntityStatus) error {
	m.mu.Lock()
	m.Calls.SetStatus = append(m.Calls.SetStatus, struct {
		Type   domain.EntityType
		Id     string
		Status domain.EntityStatus
	}{Type: typ, Id: id, Status: status})
	m.mu.Unlock()
	if m.Impl.SetStatus != nil {
		return m.Impl.SetStatus(ctx, typ, id, status)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) MarkDescendantsDeleted(ctx context.Context, id string) ([]string, error) {
	m.mu.Lock()
	m.Calls.MarkDescendantsDeleted = append(m.Calls.MarkDescendantsDeleted, id)
	m.mu.Unlock()
	if m.Impl.MarkDescendantsDeleted != nil {
		return m.Impl.MarkDescendantsDeleted(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
