package db

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
)

type EntityInterface interface {
	// Get the entity with id.
	//
	// Returns
	//
	// - domain.Entity
	//
	// - error: ErrMissing when no such entity is found.
	Get(ctx context.Context, id string) (domain.Entity, error)

	// SetStatus changes the status of the entity.
	//
	// Entities are keyed by id and type.
	// Setting the current status again succeeds without changes other than updatedAt.
	//
	// Returns
	//
	// - error: ErrMissing when no such entity is found,
	// ErrInvalidStatusChanging when the entity cannot transit to the status.
	SetStatus(ctx context.Context, typ domain.EntityType, id string, status domain.EntityStatus) error

	// MarkDescendantsDeleted sets DELETED to all entities owned by the entity, recursively.
	//
	// The entity itself is not changed.
	//
	// Returns
	//
	// - []string: ids of entities newly marked as DELETED. Already deleted ones are not included.
	//
	// - error
	MarkDescendantsDeleted(ctx context.Context, id string) ([]string, error)
}
