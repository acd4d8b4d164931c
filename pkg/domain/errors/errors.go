package errors

import "errors"

var (
	// requested record is not found.
	ErrMissing = errors.New("missing")

	// requested record is found more than expected.
	ErrTooMuch = errors.New("too much")

	// a record with the same identity already exists.
	ErrConflict = errors.New("conflict")

	// the subscription lock is held by another workflow.
	ErrSubscriptionLocked = errors.New("subscription is locked")

	// the status of the entity or the execution does not allow the change.
	ErrInvalidStatusChanging = errors.New("cannot change status")

	// the parent of the entity does not exist, or is not the expected type.
	ErrInvalidParent = errors.New("invalid parent")

	// the error is not worth retrying.
	//
	// Asset processors and cache invalidators wrap terminal errors (like validation errors) with this.
	ErrPermanent = errors.New("permanent error")
)
