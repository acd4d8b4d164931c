package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// AcquireSubscriptionLock locks the subscription for holder in a single statement.
//
// It returns ErrSubscriptionLocked when the subscription is locked already,
// even by the same holder.
func AcquireSubscriptionLock(ctx context.Context, q kpool.Queryer, subscriptionId string, holder string) error {
	var got string
	if err := q.QueryRow(
		ctx,
		`
		insert into "subscription_lock" ("subscription_id", "status", "holder", "updated_at")
		values ($1, 'LOCKED', $2, now())
		on conflict ("subscription_id") do update
			set "status" = 'LOCKED', "holder" = excluded."holder", "updated_at" = now()
			where "subscription_lock"."status" = 'UNLOCKED'
		returning "holder"
		`,
		subscriptionId, holder,
	).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xe.Wrap(kerr.ErrSubscriptionLocked)
		}
		return xe.Wrap(err)
	}
	return nil
}

// ReleaseSubscriptionLock unlocks the subscription when holder has locked it.
//
// It reports whether this call has released the lock.
func ReleaseSubscriptionLock(ctx context.Context, q kpool.Queryer, subscriptionId string, holder string) (bool, error) {
	ct, err := q.Exec(
		ctx,
		`
		update "subscription_lock"
		set "status" = 'UNLOCKED', "holder" = null, "updated_at" = now()
		where "subscription_id" = $1 and "status" = 'LOCKED' and "holder" = $2
		`,
		subscriptionId, holder,
	)
	if err != nil {
		return false, xe.Wrap(err)
	}
	return ct.RowsAffected() == 1, nil
}

// GetSubscriptionLock reads the lock of the subscription.
//
// A subscription never locked is UNLOCKED.
func GetSubscriptionLock(ctx context.Context, q kpool.Queryer, subscriptionId string) (domain.SubscriptionLock, error) {
	var status string
	lock := domain.SubscriptionLock{SubscriptionId: subscriptionId}
	if err := q.QueryRow(
		ctx,
		`
		select "status", coalesce("holder", ''), "updated_at"
		from "subscription_lock" where "subscription_id" = $1
		`,
		subscriptionId,
	).Scan(&status, &lock.Holder, &lock.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			lock.Status = domain.Unlocked
			return lock, nil
		}
		return domain.SubscriptionLock{}, xe.Wrap(err)
	}

	s, err := domain.AsLockStatus(status)
	if err != nil {
		return domain.SubscriptionLock{}, xe.Wrap(err)
	}
	lock.Status = s
	return lock, nil
}
