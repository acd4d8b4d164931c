package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	kpgerr "github.com/musecrm/museflow/pkg/domain/errors/dberrors/postgres"
	kpgintr "github.com/musecrm/museflow/pkg/domain/internal/db/postgres"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	xe "github.com/musecrm/museflow/pkg/errors"
)

type workflowPG struct {
	pool kpool.Pool
}

var _ kworkflow.WorkflowInterface = &workflowPG{}

func New(pool kpool.Pool) *workflowPG {
	return &workflowPG{pool: pool}
}

func (w *workflowPG) Start(ctx context.Context, req domain.ExecutionRequest) (domain.Execution, error) {
	var exec domain.Execution
	err := kpool.InTx(ctx, w.pool, func(tx kpool.Tx) error {
		var ref domain.EntityRef
		var err error
		switch req.Workflow.Operation {
		case domain.Create:
			ref, err = insertEntity(ctx, tx, req)
		case domain.Update:
			ref, err = updateEntity(ctx, tx, req)
		case domain.Delete:
			ref, err = markDeleting(ctx, tx, req)
		default:
			err = fmt.Errorf("unknown operation: %s", req.Workflow.Operation)
		}
		if err != nil {
			return err
		}

		if err := kpgintr.AcquireSubscriptionLock(
			ctx, tx, req.Actor.SubscriptionId, req.ExecutionId,
		); err != nil {
			return err
		}

		var parentId *string
		if ref.ParentId != "" {
			parentId = &ref.ParentId
		}
		assets, err := kpgintr.JSONB(req.Assets)
		if err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.Exec(
			ctx,
			`
			insert into "workflow_execution"
				("execution_id", "workflow", "entity_id", "entity_type", "parent_id",
				 "subscription_id", "assets", "status")
			values ($1, $2, $3, $4, $5, $6, $7, 'waiting')
			`,
			req.ExecutionId, req.Workflow.String(), ref.Id, ref.Type.String(), parentId,
			req.Actor.SubscriptionId, assets,
		); err != nil {
			if isUniqueViolation(err) {
				return xe.Wrap(kpgerr.Duplicated{Table: "workflow_execution", Identity: req.ExecutionId})
			}
			return xe.Wrap(err)
		}

		exec, err = kpgintr.GetExecution(ctx, tx, req.ExecutionId)
		return err
	})
	if err != nil {
		return domain.Execution{}, err
	}
	return exec, nil
}

func insertEntity(ctx context.Context, tx kpool.Tx, req domain.ExecutionRequest) (domain.EntityRef, error) {
	ent := req.Entity
	parentType, hasParent := ent.Type.Parent()

	var parentId *string
	switch {
	case hasParent && ent.ParentId == "":
		return domain.EntityRef{}, xe.Wrap(fmt.Errorf("%w: %s requires parent", kerr.ErrInvalidParent, ent.Type))
	case !hasParent && ent.ParentId != "":
		return domain.EntityRef{}, xe.Wrap(fmt.Errorf("%w: %s cannot have parent", kerr.ErrInvalidParent, ent.Type))
	case hasParent:
		parent, err := kpgintr.GetEntity(ctx, tx, ent.ParentId, true)
		if errors.Is(err, kerr.ErrMissing) {
			return domain.EntityRef{}, xe.Wrap(fmt.Errorf("%w: %s is not found", kerr.ErrInvalidParent, ent.ParentId))
		} else if err != nil {
			return domain.EntityRef{}, err
		}
		if parent.Type != parentType || !parent.Status.Mutable() || parent.SubscriptionId != req.Actor.SubscriptionId {
			return domain.EntityRef{}, xe.Wrap(fmt.Errorf(
				"%w: %s (%s, %s) cannot own %s",
				kerr.ErrInvalidParent, parent.Id, parent.Type, parent.Status, ent.Type,
			))
		}
		parentId = &ent.ParentId
	}

	variants, err := kpgintr.JSONB(nonNilVariants(ent.LanguageVariants))
	if err != nil {
		return domain.EntityRef{}, xe.Wrap(err)
	}
	if _, err := tx.Exec(
		ctx,
		`
		insert into "entity"
			("entity_id", "type", "parent_id", "subscription_id", "status", "language_variants")
		values ($1, $2, $3, $4, 'PENDING', $5)
		`,
		ent.Id, ent.Type.String(), parentId, req.Actor.SubscriptionId, variants,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.EntityRef{}, xe.Wrap(kpgerr.Duplicated{Table: "entity", Identity: ent.Id})
		}
		return domain.EntityRef{}, xe.Wrap(err)
	}
	return ent.EntityRef, nil
}

// lockTarget reads the entity to be updated or deleted, and checks it can be changed by req.
func lockTarget(ctx context.Context, tx kpool.Tx, req domain.ExecutionRequest) (domain.Entity, error) {
	ent, err := kpgintr.GetEntity(ctx, tx, req.Entity.Id, true)
	if err != nil {
		return domain.Entity{}, err
	}
	if ent.Type != req.Entity.Type || ent.SubscriptionId != req.Actor.SubscriptionId {
		// entities of other types or subscriptions are invisible.
		return domain.Entity{}, xe.Wrap(kpgerr.Missing{
			Table: "entity", Identity: req.Entity.Type.String() + ":" + req.Entity.Id,
		})
	}
	if !ent.Status.Mutable() {
		return domain.Entity{}, xe.Wrap(fmt.Errorf(
			"%w: %s is %s", kerr.ErrInvalidStatusChanging, ent.Id, ent.Status,
		))
	}
	return ent, nil
}

func updateEntity(ctx context.Context, tx kpool.Tx, req domain.ExecutionRequest) (domain.EntityRef, error) {
	ent, err := lockTarget(ctx, tx, req)
	if err != nil {
		return domain.EntityRef{}, err
	}

	if req.Entity.LanguageVariants != nil {
		variants, err := kpgintr.JSONB(req.Entity.LanguageVariants)
		if err != nil {
			return domain.EntityRef{}, xe.Wrap(err)
		}
		if _, err := tx.Exec(
			ctx,
			`update "entity" set "language_variants" = $2, "updated_at" = now() where "entity_id" = $1`,
			ent.Id, variants,
		); err != nil {
			return domain.EntityRef{}, xe.Wrap(err)
		}
	}
	return ent.EntityRef, nil
}

func markDeleting(ctx context.Context, tx kpool.Tx, req domain.ExecutionRequest) (domain.EntityRef, error) {
	ent, err := lockTarget(ctx, tx, req)
	if err != nil {
		return domain.EntityRef{}, err
	}
	if err := kpgintr.SetEntityStatus(ctx, tx, ent.Type, ent.Id, domain.Deleting); err != nil {
		return domain.EntityRef{}, err
	}
	return ent.EntityRef, nil
}

func nonNilVariants(v []domain.LanguageVariant) []domain.LanguageVariant {
	if v == nil {
		return []domain.LanguageVariant{}
	}
	return v
}

func isUniqueViolation(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UniqueViolation
}

func (w *workflowPG) Claim(
	ctx context.Context, cursor domain.ExecutionCursor,
) (domain.Execution, domain.ExecutionCursor, bool, error) {
	var exec domain.Execution
	claimed := false
	err := kpool.InTx(ctx, w.pool, func(tx kpool.Tx) error {
		var executionId string
		if err := tx.QueryRow(
			ctx,
			`
			select "execution_id" from "workflow_execution"
			where
				"status" = 'waiting'
				or ("status" = 'running' and "lease_until" < now())
			order by "execution_id" <= $1, "created_at", "execution_id"
			limit 1
			for no key update skip locked
			`,
			cursor.Head,
		).Scan(&executionId); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return xe.Wrap(err)
		}

		if _, err := tx.Exec(
			ctx,
			`
			update "workflow_execution"
			set
				"status" = 'running',
				"attempt" = "attempt" + 1,
				"lease_until" = now() + $2::interval,
				"updated_at" = now()
			where "execution_id" = $1
			`,
			executionId, fmt.Sprintf("%d milliseconds", cursor.Lease.Milliseconds()),
		); err != nil {
			return xe.Wrap(err)
		}

		e, err := kpgintr.GetExecution(ctx, tx, executionId)
		if err != nil {
			return err
		}
		exec = e
		claimed = true
		return nil
	})
	if err != nil {
		return domain.Execution{}, cursor, false, err
	}
	if !claimed {
		return domain.Execution{}, cursor, false, nil
	}
	return exec, domain.ExecutionCursor{Head: exec.ExecutionId, Lease: cursor.Lease}, true, nil
}

func (w *workflowPG) Record(ctx context.Context, executionId string, step string, outcome domain.StepOutcome) error {
	return kpool.InTx(ctx, w.pool, func(tx kpool.Tx) error {
		ct, err := tx.Exec(
			ctx,
			`
			update "workflow_execution"
			set
				"outcomes" = "outcomes" || jsonb_build_object($2::text, $3::text),
				"updated_at" = now()
			where "execution_id" = $1 and "status" = 'running'
			`,
			executionId, step, outcome.String(),
		)
		if err != nil {
			return xe.Wrap(err)
		}
		if ct.RowsAffected() == 0 {
			return notRunning(ctx, tx, executionId)
		}
		return nil
	})
}

func (w *workflowPG) Finish(
	ctx context.Context, executionId string, status domain.ExecutionStatus, failure string,
) (domain.Execution, error) {
	if !status.Terminal() {
		return domain.Execution{}, xe.Wrap(fmt.Errorf(
			"%w: %s is not terminal", kerr.ErrInvalidStatusChanging, status,
		))
	}

	var exec domain.Execution
	err := kpool.InTx(ctx, w.pool, func(tx kpool.Tx) error {
		ct, err := tx.Exec(
			ctx,
			`
			update "workflow_execution"
			set
				"status" = $2, "failure" = $3,
				"lease_until" = null, "updated_at" = now()
			where "execution_id" = $1 and "status" = 'running'
			`,
			executionId, status.String(), failure,
		)
		if err != nil {
			return xe.Wrap(err)
		}
		if ct.RowsAffected() == 0 {
			return notRunning(ctx, tx, executionId)
		}

		exec, err = kpgintr.GetExecution(ctx, tx, executionId)
		return err
	})
	if err != nil {
		return domain.Execution{}, err
	}
	return exec, nil
}

// notRunning explains why a running execution is not found.
func notRunning(ctx context.Context, q kpool.Queryer, executionId string) error {
	exec, err := kpgintr.GetExecution(ctx, q, executionId)
	if err != nil {
		return err
	}
	return xe.Wrap(fmt.Errorf(
		"%w: execution %s is %s", kerr.ErrInvalidStatusChanging, executionId, exec.Status,
	))
}

func (w *workflowPG) Get(ctx context.Context, executionId string) (domain.Execution, error) {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	defer conn.Release()

	return kpgintr.GetExecution(ctx, conn, executionId)
}
