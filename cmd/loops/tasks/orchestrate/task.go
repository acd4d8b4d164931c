package orchestrate

import (
	"context"
	"errors"
	"time"

	"github.com/musecrm/museflow/cmd/loops/hook"
	bindexecutions "github.com/musecrm/museflow/pkg/api-types-binding/executions"
	apiexecutions "github.com/musecrm/museflow/pkg/api/types/executions"
	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	"github.com/musecrm/museflow/pkg/events"
	"github.com/musecrm/museflow/pkg/loop/recurring"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/sirupsen/logrus"
)

// initial value for task
func Seed(lease time.Duration) domain.ExecutionCursor {
	return domain.ExecutionCursor{Lease: lease}
}

// Runner runs workflows of executions. *workflows.Runner is one.
type Runner interface {
	Run(ctx context.Context, exec domain.Execution, journal saga.Journal) saga.Result
	Abandon(ctx context.Context, exec domain.Execution, journal saga.Journal) saga.Result
}

// Recorder counts finished executions.
type Recorder interface {
	Finished(exec domain.Execution)
}

type Config struct {
	// bound of a run in one claim.
	Timeout time.Duration

	// executions claimed more than this are abandoned.
	MaxClaims int
}

// Task for the orchestrate loop.
//
// Each iteration claims an execution, runs its workflow and finishes it.
//
// An execution interrupted by shutdown is left running. It is claimed again after its lease.
//
// return:
//
// - task: returns true when an execution is claimed.
// It returns error only when the queue fails.
func Task(
	queue kworkflow.WorkflowInterface,
	runner Runner,
	hooks hook.Hook[apiexecutions.Detail],
	notifier events.Notifier,
	recorder Recorder,
	log logrus.FieldLogger,
	conf Config,
) recurring.Task[domain.ExecutionCursor] {
	return func(ctx context.Context, cursor domain.ExecutionCursor) (domain.ExecutionCursor, bool, error) {
		exec, next, claimed, err := queue.Claim(ctx, cursor)
		if err != nil {
			return cursor, false, err
		}
		if !claimed {
			return next, false, nil
		}

		log := log.WithFields(logrus.Fields{
			"executionId": exec.ExecutionId,
			"workflow":    exec.Workflow.String(),
			"attempt":     exec.Attempt,
		})

		if err := hooks.Before(ctx, bindexecutions.ComposeDetail(exec)); err != nil {
			log.WithError(err).Warn("lifecycle hook (before) failed")
		}

		journal := NewJournal(queue, exec)
		var result saga.Result
		func() {
			rctx, cancel := ctx, context.CancelFunc(func() {})
			if 0 < conf.Timeout {
				rctx, cancel = context.WithTimeout(ctx, conf.Timeout)
			}
			defer cancel()
			if 0 < conf.MaxClaims && conf.MaxClaims < exec.Attempt {
				result = runner.Abandon(rctx, exec, journal)
			} else {
				result = runner.Run(rctx, exec, journal)
			}
		}()

		if result.Interrupted {
			log.Warn("execution is left for the next claim")
			return next, true, nil
		}

		failure := ""
		if result.Err != nil {
			failure = result.Err.Error()
		}

		// the outcome is fixed already. finish it even when shutting down.
		fctx := context.WithoutCancel(ctx)
		finished, err := queue.Finish(fctx, exec.ExecutionId, result.Status, failure)
		if errors.Is(err, kerr.ErrInvalidStatusChanging) || errors.Is(err, kerr.ErrMissing) {
			log.WithError(err).Warn("execution has been finished by another worker")
			return next, true, nil
		} else if err != nil {
			return next, true, err
		}

		if err := notifier.Notify(fctx, finished); err != nil {
			log.WithError(err).Warn("failed to notify")
		}
		if err := hooks.After(fctx, bindexecutions.ComposeDetail(finished)); err != nil {
			log.WithError(err).Warn("lifecycle hook (after) failed")
		}
		recorder.Finished(finished)

		log.WithField("status", finished.Status).Info("execution is finished")
		return next, true, nil
	}
}
