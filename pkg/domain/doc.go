package domain

// domain package contains the Domain Models and Interfaces for museflow.
//
// `domain/museflow` package exposes the root object.
// Entrypoints of applications should instantiate it and use it to interact with the domain.
//
// `domain/ENTITY.go` has domain model types and functions.
// For example, `domain/entity.go` contains the content entity and its status.
//
// `domain/ENTITY/db` directory contains the database expression of the entity:
// `db/ENTITY.go` is the interface, `db/postgres` is the implementation and `db/mock` is a mock for tests.
//
// # Entities
//
// - `entity`: Institution, Exhibition and Exhibit. An Institution owns Exhibitions, an Exhibition owns Exhibits.
// Each has a status: PENDING after creation, ACTIVE or ERROR after its workflow, DELETING and DELETED on deletion.
//
// - `subscription`: a lock per billing subscription.
// At most one mutating workflow runs per subscription. The trigger acquires the lock,
// and the workflow releases it exactly once, whether it succeeds or fails.
//
// - `workflow`: executions of lifecycle workflows (create, update or delete of an entity type).
// An execution is queued in the database by the trigger, claimed by a worker in "loops",
// driven by the saga engine (`pkg/saga`) and frozen at a terminal status.
//
// And others:
//
// - `asset`: the optional set of media operations attached to a mutation request (images, audios, QR code, deletion).
// It is opaque to the orchestrator; only presence of each part matters.
//
// - `schema`: versioned database schema.
