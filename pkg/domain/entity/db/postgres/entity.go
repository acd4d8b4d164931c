package postgres

import (
	"context"

	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	"github.com/musecrm/museflow/pkg/domain"
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	kpgintr "github.com/musecrm/museflow/pkg/domain/internal/db/postgres"
	xe "github.com/musecrm/museflow/pkg/errors"
)

type entityPG struct {
	pool kpool.Pool
}

var _ kentity.EntityInterface = &entityPG{}

func New(pool kpool.Pool) *entityPG {
	return &entityPG{pool: pool}
}

func (e *entityPG) Get(ctx context.Context, id string) (domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return domain.Entity{}, xe.Wrap(err)
	}
	defer conn.Release()

	return kpgintr.GetEntity(ctx, conn, id, false)
}

func (e *entityPG) SetStatus(ctx context.Context, typ domain.EntityType, id string, status domain.EntityStatus) error {
	return kpool.InTx(ctx, e.pool, func(tx kpool.Tx) error {
		return kpgintr.SetEntityStatus(ctx, tx, typ, id, status)
	})
}

func (e *entityPG) MarkDescendantsDeleted(ctx context.Context, id string) ([]string, error) {
	var deleted []string
	err := kpool.InTx(ctx, e.pool, func(tx kpool.Tx) error {
		rows, err := tx.Query(
			ctx,
			`
			with recursive "descendant" as (
				select "entity_id" from "entity" where "parent_id" = $1
				union
				select "entity"."entity_id" from "entity"
				inner join "descendant" on "entity"."parent_id" = "descendant"."entity_id"
			)
			update "entity" set "status" = 'DELETED', "updated_at" = now()
			where "entity_id" in (table "descendant") and "status" <> 'DELETED'
			returning "entity_id"
			`,
			id,
		)
		if err != nil {
			return xe.Wrap(err)
		}
		defer rows.Close()

		for rows.Next() {
			var childId string
			if err := rows.Scan(&childId); err != nil {
				return xe.Wrap(err)
			}
			deleted = append(deleted, childId)
		}
		return xe.Wrap(rows.Err())
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
