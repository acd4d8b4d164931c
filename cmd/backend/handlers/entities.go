package handlers

import (
	"context"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	bindentities "github.com/musecrm/museflow/pkg/api-types-binding/entities"
	apierr "github.com/musecrm/museflow/pkg/api-types-binding/errors"
	apientities "github.com/musecrm/museflow/pkg/api/types/entities"
	"github.com/musecrm/museflow/pkg/domain"
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	"github.com/musecrm/museflow/pkg/trigger"
)

// Starter starts workflows of mutations. *trigger.Trigger is one.
type Starter interface {
	Start(ctx context.Context, req trigger.Request) (domain.Execution, error)
}

// MutationHandler accepts a mutation of entities of typ, and responds 202 Accepted.
//
// The entity is identified by path parameter idKey (ignored on create).
// The request body should be apientities.Mutation.
func MutationHandler(
	starter Starter,
	iEntity kentity.EntityInterface,
	typ domain.EntityType,
	op domain.Operation,
	idKey string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body := apientities.Mutation{}
		if c.Request().ContentLength != 0 {
			if err := c.Bind(&body); err != nil {
				return apierr.BadRequest("request body should be JSON", err)
			}
		}

		req := trigger.Request{
			Operation:        op,
			Type:             typ,
			ParentId:         body.ParentId,
			LanguageVariants: bindentities.BindLanguageVariants(body.LanguageVariants),
			Assets:           bindentities.BindAssets(body.Assets),
			Actor:            domain.Actor{SubscriptionId: body.Actor.SubscriptionId},
		}
		if op != domain.Create {
			req.Id = c.Param(idKey)
		}

		exec, err := starter.Start(ctx, req)
		if err != nil {
			return startError(err)
		}

		status, err := statusAfterStart(ctx, iEntity, exec)
		if err != nil {
			c.Logger().Warnf("failed to read status of %s %s: %s", exec.Entity.Type, exec.Entity.Id, err)
		}

		return c.JSON(http.StatusAccepted, bindentities.ComposeAccepted(exec, status))
	}
}

// statusAfterStart is the status of the entity just after its workflow is queued.
func statusAfterStart(ctx context.Context, iEntity kentity.EntityInterface, exec domain.Execution) (domain.EntityStatus, error) {
	switch exec.Workflow.Operation {
	case domain.Create:
		return domain.Pending, nil
	case domain.Delete:
		return domain.Deleting, nil
	}
	e, err := iEntity.Get(ctx, exec.Entity.Id)
	if err != nil {
		return "", err
	}
	return e.Status, nil
}

func startError(err error) error {
	switch {
	case errors.Is(err, trigger.ErrInvalidRequest):
		fields := map[string]string{}
		if verrs := (validation.Errors{}); errors.As(err, &verrs) {
			flatten(fields, "", verrs)
		}
		return apierr.BadRequest("fix fields of the request.", err, apierr.WithFields(fields))
	case errors.Is(err, kerr.ErrInvalidParent):
		return apierr.BadRequest(
			"parent should exist, be active and belong to the same subscription", err,
		)
	case errors.Is(err, kerr.ErrMissing):
		return apierr.NotFound()
	case errors.Is(err, kerr.ErrSubscriptionLocked):
		return apierr.Conflict(
			"another workflow is running in the subscription",
			apierr.WithAdvice("retry after the workflow is finished."),
			apierr.WithError(err),
		)
	case errors.Is(err, kerr.ErrInvalidStatusChanging):
		return apierr.Conflict(
			"the entity is being deleted or has been deleted", apierr.WithError(err),
		)
	case errors.Is(err, kerr.ErrConflict):
		return apierr.Conflict("conflicted", apierr.WithError(err))
	}
	return apierr.InternalServerError(err)
}

// flatten puts messages of nested validation errors into dst, keyed by dotted paths.
func flatten(dst map[string]string, prefix string, errs validation.Errors) {
	for k, err := range errs {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested := (validation.Errors{}); errors.As(err, &nested) {
			flatten(dst, key, nested)
			continue
		}
		dst[key] = err.Error()
	}
}

// GetEntityHandler responds the entity of typ, identified by path parameter idKey.
func GetEntityHandler(iEntity kentity.EntityInterface, typ domain.EntityType, idKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		e, err := iEntity.Get(ctx, c.Param(idKey))
		if errors.Is(err, kerr.ErrMissing) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		if e.Type != typ {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, bindentities.ComposeDetail(e))
	}
}
