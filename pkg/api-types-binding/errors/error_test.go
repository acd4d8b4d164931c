package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	binderr "github.com/musecrm/museflow/pkg/api-types-binding/errors"
	apierr "github.com/musecrm/museflow/pkg/api/types/errors"
	"github.com/musecrm/museflow/pkg/utils/cmp"
)

func TestBadRequest(t *testing.T) {
	cause := errors.New("fake")
	herr := binderr.BadRequest(
		"fix the request", cause,
		binderr.WithFields(map[string]string{"actor.subscriptionId": "cannot be blank"}),
	)

	if herr.Code != http.StatusBadRequest {
		t.Errorf("code: actual=%d, expect=%d", herr.Code, http.StatusBadRequest)
	}
	if !errors.Is(herr, cause) {
		t.Errorf("cause is not wrapped: %+v", herr)
	}

	b, err := json.Marshal(apierr.ErrorResponse{Message: herr.Message.(apierr.ErrorMessage)})
	if err != nil {
		t.Fatal(err)
	}
	actual := apierr.ErrorResponse{}
	if err := json.Unmarshal(b, &actual); err != nil {
		t.Fatal(err)
	}
	if actual.Message.Reason != "bad request" || actual.Message.Advice != "fix the request" {
		t.Errorf("message: actual=%+v", actual.Message)
	}
	if !cmp.MapEq(actual.Message.Fields, map[string]string{"actor.subscriptionId": "cannot be blank"}) {
		t.Errorf("fields: actual=%v", actual.Message.Fields)
	}
	if actual.Message.Cause != nil {
		t.Errorf("cause should not be serialized: %v", actual.Message.Cause)
	}
}

func TestErrorMessage_UnmarshalJSON_RequiresReason(t *testing.T) {
	msg := apierr.ErrorMessage{}
	if err := json.Unmarshal([]byte(`{"advice": "retry"}`), &msg); err == nil {
		t.Error("expected error is not returned")
	}
}

func TestNotFound(t *testing.T) {
	if got := binderr.NotFound().Code; got != http.StatusNotFound {
		t.Errorf("code: actual=%d, expect=%d", got, http.StatusNotFound)
	}
}
