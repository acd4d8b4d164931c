package domain

import (
	"fmt"
	"time"

	kerr "github.com/musecrm/museflow/pkg/domain/errors"
)

type EntityType string

const (
	Institution EntityType = "institution"
	Exhibition  EntityType = "exhibition"
	Exhibit     EntityType = "exhibit"
)

func (t EntityType) String() string {
	return string(t)
}

// Parent returns the type which owns entities of t.
//
// Institution has no parent; ok is false for it.
func (t EntityType) Parent() (parent EntityType, ok bool) {
	switch t {
	case Exhibit:
		return Exhibition, true
	case Exhibition:
		return Institution, true
	default:
		return "", false
	}
}

// Children returns the types owned by entities of t.
func (t EntityType) Children() []EntityType {
	switch t {
	case Institution:
		return []EntityType{Exhibition}
	case Exhibition:
		return []EntityType{Exhibit}
	default:
		return nil
	}
}

// Plural is the collection name used in paths, like "exhibits".
func (t EntityType) Plural() string {
	return string(t) + "s"
}

func AsEntityType(s string) (EntityType, error) {
	switch s {
	case string(Institution):
		return Institution, nil
	case string(Exhibition):
		return Exhibition, nil
	case string(Exhibit):
		return Exhibit, nil
	default:
		return "", fmt.Errorf("'%s' is not EntityType", s)
	}
}

func EntityTypes() []EntityType {
	return []EntityType{Institution, Exhibition, Exhibit}
}

type EntityStatus string

const (
	// The entity is created and its first workflow has not finished.
	Pending EntityStatus = "PENDING"

	// The last workflow of the entity has succeeded.
	Active EntityStatus = "ACTIVE"

	// At least one required step of the last workflow failed.
	//
	// Side effects of other steps may remain.
	Error EntityStatus = "ERROR"

	// The entity is being deleted.
	Deleting EntityStatus = "DELETING"

	// The entity has been deleted.
	Deleted EntityStatus = "DELETED"
)

func (s EntityStatus) String() string {
	return string(s)
}

func AsEntityStatus(s string) (EntityStatus, error) {
	switch s {
	case string(Pending):
		return Pending, nil
	case string(Active):
		return Active, nil
	case string(Error):
		return Error, nil
	case string(Deleting):
		return Deleting, nil
	case string(Deleted):
		return Deleted, nil
	default:
		return "", fmt.Errorf("'%s' is not EntityStatus", s)
	}
}

// CanTransitTo tells whether an entity in s can be set to next.
//
// Setting the same status again is allowed, so a re-executed step is harmless.
func (s EntityStatus) CanTransitTo(next EntityStatus) bool {
	switch s {
	case Pending, Active, Error:
		switch next {
		case Active, Error, Deleting:
			return true
		}
		return false
	case Deleting:
		return next == Deleting || next == Deleted || next == Error
	case Deleted:
		return next == Deleted
	default:
		return false
	}
}

// Mutable tells whether a new update or delete workflow can start on an entity in s.
func (s EntityStatus) Mutable() bool {
	switch s {
	case Pending, Active, Error:
		return true
	default:
		return false
	}
}

// LanguageVariant is one localized set of fields of an entity.
type LanguageVariant struct {
	Lang        string `json:"lang"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntityRef identifies an entity and its owner.
type EntityRef struct {
	Id   string
	Type EntityType

	// Id of the owner. Empty for Institutions.
	ParentId string
}

type Entity struct {
	EntityRef

	SubscriptionId string
	Status         EntityStatus

	// Localized fields, in order.
	LanguageVariants []LanguageVariant

	UpdatedAt time.Time
}

func NewErrInvalidStatusChanging(from, to EntityStatus) error {
	return fmt.Errorf("%w: %s -> %s", kerr.ErrInvalidStatusChanging, from, to)
}
