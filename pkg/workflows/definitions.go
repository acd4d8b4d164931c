package workflows

import (
	"fmt"

	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/saga"
)

type Definition = saga.Definition[domain.Execution]

type builder = saga.Builder[domain.Execution]

// Options of definitions.
type Options struct {
	Retry saga.RetryPolicy
}

func DefaultOptions() Options {
	return Options{Retry: saga.DefaultRetryPolicy()}
}

// Define builds the definition of the workflow type.
//
// Every task is retried by opts.Retry.
// When a task of the main path fails, the entity is set ERROR and the subscription is released,
// then the workflow fails. Side effects of other steps are kept.
func Define(wt domain.WorkflowType, steps Steps, opts Options) (*Definition, error) {
	b := saga.NewBuilder[domain.Execution](wt.String())
	retry := saga.WithRetry(opts.Retry)

	onError := b.Sequence(
		b.Parallel(
			StepHandleError,
			saga.Branch(BranchSetError, b.Task(StepSetError, steps.SetStatus(domain.Error), retry)),
			saga.Branch(BranchUnlockOnError, b.Task(
				StepReleaseOnError, steps.Release, retry, saga.Once(onceRelease),
			)),
		),
		b.Fail("Failed", wt.String()+" has failed"),
	)
	catch := saga.WithCatch(onError)

	// gated returns a node invoking the processor for kind, only if the asset is present.
	gated := func(kind domain.AssetKind, step string) saga.NodeID {
		return b.Choice(
			"Has"+step, Has(kind),
			b.Task(step, steps.Process(kind), retry, catch),
			b.Pass("No"+step),
		)
	}

	var start saga.NodeID
	switch wt.Operation {
	case domain.Create, domain.Update:
		var branches []saga.BranchSpec
		if wt.Operation == domain.Create {
			branches = append(branches, saga.Branch(BranchQRCode, gated(domain.QRCode, StepGenerateQRCode)))
		}
		branches = append(
			branches,
			saga.Branch(BranchImages, gated(domain.Images, StepProcessImages)),
			saga.Branch(BranchAudios, gated(domain.Audios, StepProcessAudios)),
		)
		if wt.Operation == domain.Update {
			branches = append(branches, saga.Branch(BranchDelete, gated(domain.DeleteAssets, StepDeleteAssets)))
		}

		start = b.Sequence(
			b.Parallel(StepProcessAssets, branches...),
			b.Task(StepInvalidate, steps.Invalidate, retry, catch),
			b.Parallel(
				StepCommit,
				saga.Branch(BranchSetActive, b.Task(StepSetActive, steps.SetStatus(domain.Active), retry, catch)),
				saga.Branch(BranchUnlock, b.Task(
					StepRelease, steps.Release, retry, catch, saga.Once(onceRelease),
				)),
			),
			b.Succeed("Succeeded"),
		)

	case domain.Delete:
		path := []saga.NodeID{gated(domain.DeleteAssets, StepDeleteAssets)}
		if len(wt.Entity.Children()) != 0 {
			path = append(path, b.Task(StepDeleteChildren, steps.DeleteChildren, retry, catch))
		}
		path = append(
			path,
			b.Task(StepInvalidate, steps.Invalidate, retry, catch),
			b.Task(StepSetDeleted, steps.SetStatus(domain.Deleted), retry, catch),
			b.Task(StepRelease, steps.Release, retry, catch, saga.Once(onceRelease)),
			b.Succeed("Succeeded"),
		)
		start = b.Sequence(path...)

	default:
		return nil, fmt.Errorf("unknown operation: %s", wt.Operation)
	}

	return b.Build(start)
}

// defineAbandon builds the definition giving up an execution:
// the entity is set ERROR and the subscription is released.
func defineAbandon(steps Steps, opts Options) (*Definition, error) {
	b := saga.NewBuilder[domain.Execution]("abandon")
	retry := saga.WithRetry(opts.Retry)

	start := b.Sequence(
		b.Parallel(
			StepHandleError,
			saga.Branch(BranchSetError, b.Task(StepSetError, steps.SetStatus(domain.Error), retry)),
			saga.Branch(BranchUnlockOnError, b.Task(
				StepReleaseOnError, steps.Release, retry, saga.Once(onceRelease),
			)),
		),
		b.Fail("Abandoned", "execution is abandoned"),
	)
	return b.Build(start)
}
