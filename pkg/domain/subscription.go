package domain

import (
	"fmt"
	"time"
)

type LockStatus string

const (
	Locked   LockStatus = "LOCKED"
	Unlocked LockStatus = "UNLOCKED"
)

func (s LockStatus) String() string {
	return string(s)
}

func AsLockStatus(s string) (LockStatus, error) {
	switch s {
	case string(Locked):
		return Locked, nil
	case string(Unlocked):
		return Unlocked, nil
	default:
		return "", fmt.Errorf("'%s' is not LockStatus", s)
	}
}

// SubscriptionLock serializes mutating workflows of a subscription.
type SubscriptionLock struct {
	SubscriptionId string
	Status         LockStatus

	// Id of the execution holding the lock. Empty when unlocked.
	Holder string

	UpdatedAt time.Time
}

// Actor is who requests a mutation.
type Actor struct {
	SubscriptionId string `json:"subscriptionId"`
}
