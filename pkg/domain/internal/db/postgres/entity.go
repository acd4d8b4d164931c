package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	"github.com/musecrm/museflow/pkg/domain"
	kpgerr "github.com/musecrm/museflow/pkg/domain/errors/dberrors/postgres"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// GetEntity reads the entity with id.
//
// With forUpdate, the row is locked until the end of the transaction.
//
// It returns Missing when no such entity is found.
func GetEntity(ctx context.Context, q kpool.Queryer, id string, forUpdate bool) (domain.Entity, error) {
	query := `
		select
			"entity_id", "type", coalesce("parent_id", ''), "subscription_id",
			"status", "language_variants", "updated_at"
		from "entity"
		where "entity_id" = $1
	`
	if forUpdate {
		query += ` for update`
	}

	var typ, status string
	var variants pgtype.JSONB
	ent := domain.Entity{}
	if err := q.QueryRow(ctx, query, id).Scan(
		&ent.Id, &typ, &ent.ParentId, &ent.SubscriptionId,
		&status, &variants, &ent.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, xe.Wrap(kpgerr.Missing{Table: "entity", Identity: id})
		}
		return domain.Entity{}, xe.Wrap(err)
	}

	var err error
	if ent.Type, err = domain.AsEntityType(typ); err != nil {
		return domain.Entity{}, xe.Wrap(err)
	}
	if ent.Status, err = domain.AsEntityStatus(status); err != nil {
		return domain.Entity{}, xe.Wrap(err)
	}
	if err := FromJSONB(variants, &ent.LanguageVariants); err != nil {
		return domain.Entity{}, xe.Wrap(err)
	}
	return ent, nil
}

// SetEntityStatus changes the status of the entity having the id and the type.
//
// It returns Missing when no such entity is found,
// and ErrInvalidStatusChanging when the current status cannot transit to the new one.
func SetEntityStatus(
	ctx context.Context, q kpool.Queryer,
	typ domain.EntityType, id string, status domain.EntityStatus,
) error {
	var current string
	if err := q.QueryRow(
		ctx,
		`select "status" from "entity" where "entity_id" = $1 and "type" = $2 for update`,
		id, typ.String(),
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xe.Wrap(kpgerr.Missing{Table: "entity", Identity: typ.String() + ":" + id})
		}
		return xe.Wrap(err)
	}

	from, err := domain.AsEntityStatus(current)
	if err != nil {
		return xe.Wrap(err)
	}
	if !from.CanTransitTo(status) {
		return xe.Wrap(domain.NewErrInvalidStatusChanging(from, status))
	}

	if _, err := q.Exec(
		ctx,
		`update "entity" set "status" = $2, "updated_at" = now() where "entity_id" = $1`,
		id, status.String(),
	); err != nil {
		return xe.Wrap(err)
	}
	return nil
}
