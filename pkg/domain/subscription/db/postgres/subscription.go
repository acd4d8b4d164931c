package postgres

import (
	"context"

	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	"github.com/musecrm/museflow/pkg/domain"
	kpgintr "github.com/musecrm/museflow/pkg/domain/internal/db/postgres"
	ksubscription "github.com/musecrm/museflow/pkg/domain/subscription/db"
	xe "github.com/musecrm/museflow/pkg/errors"
)

type subscriptionPG struct {
	pool kpool.Pool
}

var _ ksubscription.SubscriptionInterface = &subscriptionPG{}

func New(pool kpool.Pool) *subscriptionPG {
	return &subscriptionPG{pool: pool}
}

func (s *subscriptionPG) Acquire(ctx context.Context, subscriptionId string, holder string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	return kpgintr.AcquireSubscriptionLock(ctx, conn, subscriptionId, holder)
}

func (s *subscriptionPG) Release(ctx context.Context, subscriptionId string, holder string) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, xe.Wrap(err)
	}
	defer conn.Release()

	return kpgintr.ReleaseSubscriptionLock(ctx, conn, subscriptionId, holder)
}

func (s *subscriptionPG) Get(ctx context.Context, subscriptionId string) (domain.SubscriptionLock, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return domain.SubscriptionLock{}, xe.Wrap(err)
	}
	defer conn.Release()

	return kpgintr.GetSubscriptionLock(ctx, conn, subscriptionId)
}
