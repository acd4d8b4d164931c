package db

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
)

// SubscriptionInterface manages subscription locks.
//
// A lock serializes mutating workflows of a subscription.
type SubscriptionInterface interface {
	// Acquire locks the subscription for holder, atomically.
	//
	// Returns
	//
	// - error: ErrSubscriptionLocked when it is locked already.
	Acquire(ctx context.Context, subscriptionId string, holder string) error

	// Release unlocks the subscription if holder is holding it.
	//
	// Returns
	//
	// - bool: true only when this call has unlocked the subscription.
	// Releasing by others or releasing twice returns false and changes nothing.
	//
	// - error
	Release(ctx context.Context, subscriptionId string, holder string) (bool, error)

	// Get the lock of the subscription. Unknown subscriptions are UNLOCKED.
	Get(ctx context.Context, subscriptionId string) (domain.SubscriptionLock, error)
}
