package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/musecrm/museflow/pkg/api-types-binding/errors"
	bindexecutions "github.com/musecrm/museflow/pkg/api-types-binding/executions"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
)

func GetExecutionHandler(iWorkflow kworkflow.WorkflowInterface, idKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		exec, err := iWorkflow.Get(ctx, c.Param(idKey))
		if errors.Is(err, kerr.ErrMissing) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, bindexecutions.ComposeDetail(exec))
	}
}
