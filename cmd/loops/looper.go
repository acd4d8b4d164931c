package main

import (
	"context"
	"fmt"
	"time"

	"github.com/musecrm/museflow/cmd/loops/hook"
	"github.com/musecrm/museflow/cmd/loops/tasks/orchestrate"
	apiexecutions "github.com/musecrm/museflow/pkg/api/types/executions"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	"github.com/musecrm/museflow/pkg/events"
	"github.com/musecrm/museflow/pkg/loop"
	"github.com/musecrm/museflow/pkg/loop/recurring"
	"github.com/sirupsen/logrus"
)

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger logrus.FieldLogger, task loop.Task[T]) loop.Task[T] {
	// counter for execution of the task
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.WithField("iteration", fmt.Sprintf("0x%X", counter)).Debug("task start")

		// log at the end of the task
		defer func() {
			logger.WithFields(logrus.Fields{
				"iteration": fmt.Sprintf("0x%X", counter),
				"takes":     time.Since(timestamp).String(),
				"next":      next.String(),
			}).Debug("task end")
		}()

		ret, next = task(ctx, t)
		return
	}
}

// Manifest for starting a loop, which determines how the loop should behave.
type LoopManifest struct {
	// Policy for the looping
	Policy recurring.Policy

	// Hooks called before and after each execution
	Hooks hook.Hook[apiexecutions.Detail]

	Orchestrate orchestrate.Config

	// How long a claim lasts.
	Lease time.Duration
}

// StartOrchestrateLoop runs a worker claiming and running executions.
//
// Args:
//
// - ctx
//
// - logger : logger for the worker.
//
// - queue : the durable execution queue.
//
// - runner, notifier, recorder : collaborators of each execution.
//
// - manifest
func StartOrchestrateLoop(
	ctx context.Context,
	logger logrus.FieldLogger,
	queue kworkflow.WorkflowInterface,
	runner orchestrate.Runner,
	notifier events.Notifier,
	recorder orchestrate.Recorder,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, orchestrate.Seed(manifest.Lease),
		monitor(
			logger,
			orchestrate.Task(
				queue, runner, manifest.Hooks, notifier, recorder, logger, manifest.Orchestrate,
			).Applied(manifest.Policy),
		),
	)
	return err
}
