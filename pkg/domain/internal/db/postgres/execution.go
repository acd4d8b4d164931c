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

// GetExecution reads the execution with id.
//
// It returns Missing when no such execution is found.
func GetExecution(ctx context.Context, q kpool.Queryer, executionId string) (domain.Execution, error) {
	var workflow, entityType, status string
	var assets, outcomes pgtype.JSONB
	exec := domain.Execution{}
	if err := q.QueryRow(
		ctx,
		`
		select
			"execution_id", "workflow", "entity_id", "entity_type", coalesce("parent_id", ''),
			"subscription_id", "assets", "status", "outcomes", "failure", "attempt",
			"lease_until", "created_at", "updated_at"
		from "workflow_execution"
		where "execution_id" = $1
		`,
		executionId,
	).Scan(
		&exec.ExecutionId, &workflow, &exec.Entity.Id, &entityType, &exec.Entity.ParentId,
		&exec.Actor.SubscriptionId, &assets, &status, &outcomes, &exec.Failure, &exec.Attempt,
		&exec.LeaseUntil, &exec.CreatedAt, &exec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Execution{}, xe.Wrap(kpgerr.Missing{Table: "workflow_execution", Identity: executionId})
		}
		return domain.Execution{}, xe.Wrap(err)
	}

	var err error
	if exec.Workflow, err = domain.AsWorkflowType(workflow); err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	if exec.Entity.Type, err = domain.AsEntityType(entityType); err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	if exec.Status, err = domain.AsExecutionStatus(status); err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	if err := FromJSONB(assets, &exec.Assets); err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}

	raw := map[string]string{}
	if err := FromJSONB(outcomes, &raw); err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	exec.Outcomes = make(map[string]domain.StepOutcome, len(raw))
	for name, o := range raw {
		outcome, err := domain.AsStepOutcome(o)
		if err != nil {
			return domain.Execution{}, xe.Wrap(err)
		}
		exec.Outcomes[name] = outcome
	}

	return exec, nil
}
