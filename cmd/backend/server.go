package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/musecrm/museflow/cmd/backend/handlers"
	museflow "github.com/musecrm/museflow/pkg"
	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/utils/echoutil"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

func BuildServer(mf museflow.Museflow, starter handlers.Starter, metrics http.Handler, loglevel string) *echo.Echo {

	e := echo.New()
	echoutil.SetLevel(e, loglevel)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())

	// logging for server-side latency.
	e.Use(echoutil.LogHandlerFunc)

	iEntity := mf.Database().Entity()

	for _, typ := range domain.EntityTypes() {
		collection := api(typ.Plural())
		item := api(typ.Plural() + "/:id")

		e.POST(collection, handlers.MutationHandler(starter, iEntity, typ, domain.Create, "id"))
		e.PUT(item, handlers.MutationHandler(starter, iEntity, typ, domain.Update, "id"))
		e.DELETE(item, handlers.MutationHandler(starter, iEntity, typ, domain.Delete, "id"))
		e.GET(item, handlers.GetEntityHandler(iEntity, typ, "id"))
	}

	e.GET(api("executions/:executionId"), handlers.GetExecutionHandler(
		mf.Database().Workflow(), "executionId",
	))

	if metrics != nil {
		e.GET("/metrics/", echo.WrapHandler(metrics))
	}

	return e
}
