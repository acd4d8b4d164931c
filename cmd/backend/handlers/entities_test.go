package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/musecrm/museflow/cmd/backend/handlers"
	httptestutil "github.com/musecrm/museflow/internal/testutils/http"
	apientities "github.com/musecrm/museflow/pkg/api/types/entities"
	apierr "github.com/musecrm/museflow/pkg/api/types/errors"
	"github.com/musecrm/museflow/pkg/domain"
	entitymock "github.com/musecrm/museflow/pkg/domain/entity/db/mock"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	"github.com/musecrm/museflow/pkg/trigger"
	"github.com/musecrm/museflow/pkg/utils/cmp"
	"github.com/musecrm/museflow/pkg/utils/rfctime"
	"github.com/musecrm/museflow/pkg/utils/try"
)

type fakeStarter struct {
	requests []trigger.Request
	start    func(trigger.Request) (domain.Execution, error)
}

func (f *fakeStarter) Start(_ context.Context, req trigger.Request) (domain.Execution, error) {
	f.requests = append(f.requests, req)
	return f.start(req)
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	herr := new(echo.HTTPError)
	if !errors.As(err, &herr) {
		t.Fatalf("error is not HTTPError: %+v", err)
	}
	return herr.Code
}

func TestMutationHandler(t *testing.T) {
	type When struct {
		typ    domain.EntityType
		op     domain.Operation
		id     string
		body   string
		result domain.Execution
		err    error
		entity domain.Entity
	}
	type Then struct {
		request trigger.Request
		code    int
		body    apientities.Accepted
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			starter := &fakeStarter{
				start: func(trigger.Request) (domain.Execution, error) { return when.result, when.err },
			}
			iEntity := entitymock.NewEntityInterface()
			iEntity.Impl.Get = func(context.Context, string) (domain.Entity, error) {
				return when.entity, nil
			}

			e := echo.New()
			send := map[domain.Operation]func(*echo.Echo, string, io.Reader, ...httptestutil.RequestOption) (echo.Context, *httptest.ResponseRecorder){
				domain.Create: httptestutil.Post,
				domain.Update: httptestutil.Put,
				domain.Delete: httptestutil.Delete,
			}[when.op]
			c, resp := send(
				e, "/", bytes.NewBufferString(when.body), httptestutil.ContentType("application/json"),
			)
			c.SetParamNames("id")
			c.SetParamValues(when.id)

			err := handlers.MutationHandler(starter, iEntity, when.typ, when.op, "id")(c)

			if then.code != http.StatusAccepted {
				if got := codeOf(t, err); got != then.code {
					t.Errorf("code: actual=%d, expect=%d", got, then.code)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				if c.Response().Status != http.StatusAccepted {
					t.Errorf("status: actual=%d, expect=%d", c.Response().Status, http.StatusAccepted)
				}
				actual := apientities.Accepted{}
				if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
					t.Fatal(err)
				}
				if actual != then.body {
					t.Errorf("body:\n===actual===\n%+v\n===expect===\n%+v", actual, then.body)
				}
			}

			if len(starter.requests) != 1 {
				t.Fatalf("requests: actual=%d, expect=1", len(starter.requests))
			}
			got := starter.requests[0]
			if got.Operation != then.request.Operation ||
				got.Type != then.request.Type ||
				got.Id != then.request.Id ||
				got.ParentId != then.request.ParentId ||
				got.Actor != then.request.Actor ||
				!cmp.SliceEq(got.LanguageVariants, then.request.LanguageVariants) {
				t.Errorf("request:\n===actual===\n%+v\n===expect===\n%+v", got, then.request)
			}
		}
	}

	exhibitCreated := domain.Execution{
		ExecutionId: "exec-1",
		Workflow:    domain.WorkflowType{Entity: domain.Exhibit, Operation: domain.Create},
		Entity:      domain.EntityRef{Id: "x1", Type: domain.Exhibit, ParentId: "e1"},
	}

	t.Run("create an exhibit", theory(
		When{
			typ: domain.Exhibit, op: domain.Create,
			body: `{
				"parentId": "e1",
				"languageVariants": [{"lang": "en", "title": "Mona Lisa"}],
				"assets": {"images": [{"url": "https://example.com/a.png"}]},
				"actor": {"subscriptionId": "s1"}
			}`,
			result: exhibitCreated,
		},
		Then{
			request: trigger.Request{
				Operation: domain.Create, Type: domain.Exhibit, ParentId: "e1",
				LanguageVariants: []domain.LanguageVariant{{Lang: "en", Title: "Mona Lisa"}},
				Actor:            domain.Actor{SubscriptionId: "s1"},
			},
			code: http.StatusAccepted,
			body: apientities.Accepted{
				Id: "x1", Type: "exhibit", Status: "PENDING", ExecutionId: "exec-1",
			},
		},
	))

	t.Run("update an exhibition keeps its status", theory(
		When{
			typ: domain.Exhibition, op: domain.Update, id: "e1",
			body: `{"languageVariants": [{"lang": "ja", "title": "展覧会"}], "actor": {"subscriptionId": "s1"}}`,
			result: domain.Execution{
				ExecutionId: "exec-2",
				Workflow:    domain.WorkflowType{Entity: domain.Exhibition, Operation: domain.Update},
				Entity:      domain.EntityRef{Id: "e1", Type: domain.Exhibition, ParentId: "i1"},
			},
			entity: domain.Entity{
				EntityRef: domain.EntityRef{Id: "e1", Type: domain.Exhibition, ParentId: "i1"},
				Status:    domain.Error,
			},
		},
		Then{
			request: trigger.Request{
				Operation: domain.Update, Type: domain.Exhibition, Id: "e1",
				LanguageVariants: []domain.LanguageVariant{{Lang: "ja", Title: "展覧会"}},
				Actor:            domain.Actor{SubscriptionId: "s1"},
			},
			code: http.StatusAccepted,
			body: apientities.Accepted{
				Id: "e1", Type: "exhibition", Status: "ERROR", ExecutionId: "exec-2",
			},
		},
	))

	t.Run("delete an institution", theory(
		When{
			typ: domain.Institution, op: domain.Delete, id: "i1",
			body: `{"actor": {"subscriptionId": "s1"}}`,
			result: domain.Execution{
				ExecutionId: "exec-3",
				Workflow:    domain.WorkflowType{Entity: domain.Institution, Operation: domain.Delete},
				Entity:      domain.EntityRef{Id: "i1", Type: domain.Institution},
			},
		},
		Then{
			request: trigger.Request{
				Operation: domain.Delete, Type: domain.Institution, Id: "i1",
				Actor: domain.Actor{SubscriptionId: "s1"},
			},
			code: http.StatusAccepted,
			body: apientities.Accepted{
				Id: "i1", Type: "institution", Status: "DELETING", ExecutionId: "exec-3",
			},
		},
	))

	for name, c := range map[string]struct {
		err  error
		code int
	}{
		"invalid request":  {err: fmt.Errorf("%w: actor.subscriptionId: cannot be blank", trigger.ErrInvalidRequest), code: http.StatusBadRequest},
		"invalid parent":   {err: fmt.Errorf("wrapped: %w", kerr.ErrInvalidParent), code: http.StatusBadRequest},
		"missing":          {err: kerr.ErrMissing, code: http.StatusNotFound},
		"locked":           {err: kerr.ErrSubscriptionLocked, code: http.StatusConflict},
		"being deleted":    {err: kerr.ErrInvalidStatusChanging, code: http.StatusConflict},
		"duplicated id":    {err: kerr.ErrConflict, code: http.StatusConflict},
		"unexpected error": {err: errors.New("fake error"), code: http.StatusInternalServerError},
	} {
		t.Run("when the trigger returns "+name, theory(
			When{
				typ: domain.Exhibit, op: domain.Update, id: "x1",
				body: `{"actor": {"subscriptionId": "s1"}}`,
				err:  c.err,
			},
			Then{
				request: trigger.Request{
					Operation: domain.Update, Type: domain.Exhibit, Id: "x1",
					Actor: domain.Actor{SubscriptionId: "s1"},
				},
				code: c.code,
			},
		))
	}
}

func TestMutationHandler_BrokenBody(t *testing.T) {
	starter := &fakeStarter{
		start: func(trigger.Request) (domain.Execution, error) {
			t.Fatal("it should not be called")
			return domain.Execution{}, nil
		},
	}
	e := echo.New()
	c, _ := httptestutil.Post(
		e, "/", bytes.NewBufferString(`{"actor": `), httptestutil.ContentType("application/json"),
	)

	err := handlers.MutationHandler(
		starter, entitymock.NewEntityInterface(), domain.Institution, domain.Create, "id",
	)(c)
	if got := codeOf(t, err); got != http.StatusBadRequest {
		t.Errorf("code: actual=%d, expect=%d", got, http.StatusBadRequest)
	}
}

func TestGetEntityHandler(t *testing.T) {
	updatedAt := try.To(time.Parse(time.RFC3339, "2026-03-04T05:06:07+00:00")).OrFatal(t)
	stored := domain.Entity{
		EntityRef:        domain.EntityRef{Id: "e1", Type: domain.Exhibition, ParentId: "i1"},
		SubscriptionId:   "s1",
		Status:           domain.Active,
		LanguageVariants: []domain.LanguageVariant{{Lang: "en", Title: "Impressionists"}},
		UpdatedAt:        updatedAt,
	}

	type When struct {
		typ domain.EntityType
		err error
	}
	type Then struct {
		code int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			iEntity := entitymock.NewEntityInterface()
			iEntity.Impl.Get = func(_ context.Context, id string) (domain.Entity, error) {
				if when.err != nil {
					return domain.Entity{}, when.err
				}
				return stored, nil
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/")
			c.SetParamNames("id")
			c.SetParamValues("e1")

			err := handlers.GetEntityHandler(iEntity, when.typ, "id")(c)

			if then.code != http.StatusOK {
				if got := codeOf(t, err); got != then.code {
					t.Errorf("code: actual=%d, expect=%d", got, then.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			actual := apientities.Detail{}
			if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
				t.Fatal(err)
			}
			expected := apientities.Detail{
				Id: "e1", Type: "exhibition", ParentId: "i1", SubscriptionId: "s1", Status: "ACTIVE",
				LanguageVariants: []apientities.LanguageVariant{{Lang: "en", Title: "Impressionists"}},
				UpdatedAt:        rfctime.RFC3339(updatedAt),
			}
			if actual.Id != expected.Id ||
				actual.Type != expected.Type ||
				actual.ParentId != expected.ParentId ||
				actual.SubscriptionId != expected.SubscriptionId ||
				actual.Status != expected.Status ||
				!cmp.SliceEq(actual.LanguageVariants, expected.LanguageVariants) ||
				!actual.UpdatedAt.Time().Equal(expected.UpdatedAt.Time()) {
				t.Errorf("body:\n===actual===\n%+v\n===expect===\n%+v", actual, expected)
			}
		}
	}

	t.Run("it responds the entity", theory(
		When{typ: domain.Exhibition}, Then{code: http.StatusOK},
	))
	t.Run("it responds 404 when the type does not match", theory(
		When{typ: domain.Exhibit}, Then{code: http.StatusNotFound},
	))
	t.Run("it responds 404 when the entity is missing", theory(
		When{typ: domain.Exhibition, err: kerr.ErrMissing}, Then{code: http.StatusNotFound},
	))
	t.Run("it responds 500 on unexpected errors", theory(
		When{typ: domain.Exhibition, err: errors.New("fake")}, Then{code: http.StatusInternalServerError},
	))
}

func TestMutationHandler_InvalidRequestTellsFields(t *testing.T) {
	starter := &fakeStarter{
		start: func(req trigger.Request) (domain.Execution, error) {
			return domain.Execution{}, fmt.Errorf("%w: %w", trigger.ErrInvalidRequest, req.Validate())
		},
	}
	e := echo.New()
	c, _ := httptestutil.Post(
		e, "/",
		bytes.NewBufferString(`{"languageVariants": [{"lang": "en"}], "actor": {"subscriptionId": "s1"}}`),
		httptestutil.ContentType("application/json"),
	)

	err := handlers.MutationHandler(
		starter, entitymock.NewEntityInterface(), domain.Institution, domain.Create, "id",
	)(c)

	herr := new(echo.HTTPError)
	if !errors.As(err, &herr) {
		t.Fatalf("error is not HTTPError: %+v", err)
	}
	if herr.Code != http.StatusBadRequest {
		t.Errorf("code: actual=%d, expect=%d", herr.Code, http.StatusBadRequest)
	}
	msg, ok := herr.Message.(apierr.ErrorMessage)
	if !ok {
		t.Fatalf("message is not ErrorMessage: %#v", herr.Message)
	}
	if _, ok := msg.Fields["languageVariants.0.title"]; !ok || len(msg.Fields) != 1 {
		t.Errorf("fields: actual=%v, expect only languageVariants.0.title", msg.Fields)
	}
}
