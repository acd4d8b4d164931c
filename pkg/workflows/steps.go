package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/musecrm/museflow/pkg/assets"
	"github.com/musecrm/museflow/pkg/cdn"
	"github.com/musecrm/museflow/pkg/domain"
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	ksubscription "github.com/musecrm/museflow/pkg/domain/subscription/db"
	xe "github.com/musecrm/museflow/pkg/errors"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/sirupsen/logrus"
)

// names of steps and branches. They are keys of execution outcomes.
const (
	StepProcessAssets  = "ProcessAssets"
	StepGenerateQRCode = "GenerateQRCode"
	StepProcessImages  = "ProcessImages"
	StepProcessAudios  = "ProcessAudios"
	StepDeleteAssets   = "DeleteAssets"
	StepDeleteChildren = "DeleteChildren"
	StepInvalidate     = "InvalidateCache"
	StepCommit         = "Commit"
	StepSetActive      = "SetActiveStatus"
	StepSetDeleted     = "SetDeletedStatus"
	StepRelease        = "ReleaseSubscription"
	StepHandleError    = "HandleError"
	StepSetError       = "SetErrorStatus"
	StepReleaseOnError = "ReleaseSubscriptionOnError"

	BranchQRCode        = "qrCode"
	BranchImages        = "images"
	BranchAudios        = "audios"
	BranchDelete        = "delete"
	BranchSetActive     = "setActive"
	BranchUnlock        = "unlock"
	BranchSetError      = "setError"
	BranchUnlockOnError = "unlockOnError"
)

// onceRelease groups tasks releasing the subscription lock.
const onceRelease = "release-subscription"

// Steps are actions of workflows, backed by collaborators.
type Steps struct {
	Entities      kentity.EntityInterface
	Subscriptions ksubscription.SubscriptionInterface
	Processors    assets.Processors
	Cache         cdn.Invalidator
	Log           logrus.FieldLogger
}

func (s Steps) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// permanent marks errors which repeating the same request never fixes.
func permanent(err error) error {
	if err == nil || errors.Is(err, kerr.ErrPermanent) {
		return err
	}
	if errors.Is(err, kerr.ErrMissing) || errors.Is(err, kerr.ErrInvalidStatusChanging) {
		return fmt.Errorf("%w: %w", kerr.ErrPermanent, err)
	}
	return err
}

// Process invokes the processor for kind.
func (s Steps) Process(kind domain.AssetKind) saga.Action[domain.Execution] {
	return func(ctx context.Context, exec domain.Execution) error {
		return s.Processors.Process(ctx, assets.NewJob(exec, kind))
	}
}

// Has tells whether the execution carries the asset of kind.
func Has(kind domain.AssetKind) saga.Condition[domain.Execution] {
	return func(exec domain.Execution) bool {
		return exec.Assets.Has(kind)
	}
}

// Invalidate purges cached paths of the entity.
func (s Steps) Invalidate(ctx context.Context, exec domain.Execution) error {
	return s.Cache.Invalidate(
		ctx, exec.ExecutionId+"/"+StepInvalidate, CachePaths(exec.Workflow, exec.Entity),
	)
}

// SetStatus sets status to the entity.
func (s Steps) SetStatus(status domain.EntityStatus) saga.Action[domain.Execution] {
	return func(ctx context.Context, exec domain.Execution) error {
		return permanent(s.Entities.SetStatus(ctx, exec.Entity.Type, exec.Entity.Id, status))
	}
}

// Release unlocks the subscription held by the execution.
//
// Releasing a lock which is not held by the execution changes nothing.
func (s Steps) Release(ctx context.Context, exec domain.Execution) error {
	released, err := s.Subscriptions.Release(ctx, exec.Actor.SubscriptionId, exec.ExecutionId)
	if err != nil {
		return xe.Wrap(err)
	}
	if !released {
		s.log().WithField("executionId", exec.ExecutionId).
			WithField("subscriptionId", exec.Actor.SubscriptionId).
			Warn("subscription lock is not held by the execution")
	}
	return nil
}

// DeleteChildren marks descendants of the entity deleted.
func (s Steps) DeleteChildren(ctx context.Context, exec domain.Execution) error {
	deleted, err := s.Entities.MarkDescendantsDeleted(ctx, exec.Entity.Id)
	if err != nil {
		return permanent(err)
	}
	if len(deleted) != 0 {
		s.log().WithField("executionId", exec.ExecutionId).
			WithField("entities", deleted).
			Info("descendants are deleted")
	}
	return nil
}
