package workflows

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/sirupsen/logrus"
)

// Runner runs executions by their workflow.
type Runner struct {
	registry *Registry
	engine   *saga.Engine[domain.Execution]
	log      logrus.FieldLogger
}

func NewRunner(registry *Registry, engine *saga.Engine[domain.Execution], log logrus.FieldLogger) *Runner {
	return &Runner{registry: registry, engine: engine, log: log}
}

func (r *Runner) logFor(exec domain.Execution) logrus.FieldLogger {
	return r.log.WithFields(logrus.Fields{
		"executionId": exec.ExecutionId,
		"workflow":    exec.Workflow.String(),
		"entityId":    exec.Entity.Id,
	})
}

// Run runs the workflow of exec.
//
// Steps succeeded in journal are not run again.
func (r *Runner) Run(ctx context.Context, exec domain.Execution, journal saga.Journal) saga.Result {
	log := r.logFor(exec)
	def, err := r.registry.Get(exec.Workflow)
	if err != nil {
		log.WithError(err).Error("no definition")
		return saga.Result{Status: domain.Failed, Outcomes: map[string]domain.StepOutcome{}, Err: err}
	}

	log.Info("workflow started")
	result := r.engine.With(log).Run(ctx, def, exec, journal)
	switch {
	case result.Interrupted:
		log.Warn("workflow is interrupted")
	case result.Err != nil:
		log.WithError(result.Err).Warn("workflow failed")
	default:
		log.Info("workflow succeeded")
	}
	return result
}

// Abandon gives up exec without running its workflow.
//
// The entity is set ERROR and the subscription is released. The result is Failed unless interrupted.
func (r *Runner) Abandon(ctx context.Context, exec domain.Execution, journal saga.Journal) saga.Result {
	log := r.logFor(exec)
	log.Warn("execution is abandoned")
	return r.engine.With(log).Run(ctx, r.registry.abandon, exec, journal)
}
