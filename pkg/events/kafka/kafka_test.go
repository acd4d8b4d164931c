package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/events"
	kevents "github.com/musecrm/museflow/pkg/events/kafka"
	"github.com/musecrm/museflow/pkg/utils/cmp"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	err      error
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNotifier(t *testing.T) {
	exec := domain.Execution{
		ExecutionId: "exec-1",
		Workflow:    domain.WorkflowType{Entity: domain.Exhibit, Operation: domain.Create},
		Entity:      domain.EntityRef{Id: "e1", Type: domain.Exhibit, ParentId: "x1"},
		Status:      domain.Failed,
		Outcomes:    map[string]domain.StepOutcome{"qrCode": domain.Failure},
		Failure:     "qr code service is unavailable",
	}

	t.Run("it writes an event keyed by entity id", func(t *testing.T) {
		w := &fakeWriter{}
		testee := kevents.New(w)
		if err := testee.Notify(context.Background(), exec); err != nil {
			t.Fatal(err)
		}

		if len(w.messages) != 1 {
			t.Fatalf("messages: actual=%d, expect=1", len(w.messages))
		}
		msg := w.messages[0]
		if string(msg.Key) != "e1" {
			t.Errorf("key: actual=%s, expect=e1", msg.Key)
		}

		var actual events.Event
		if err := json.Unmarshal(msg.Value, &actual); err != nil {
			t.Fatal(err)
		}
		expected := events.Event{
			ExecutionId: "exec-1",
			Workflow:    "create-exhibit",
			EntityId:    "e1",
			EntityType:  "exhibit",
			Status:      "failed",
			Outcomes:    map[string]domain.StepOutcome{"qrCode": domain.Failure},
			Failure:     "qr code service is unavailable",
		}
		if actual.ExecutionId != expected.ExecutionId ||
			actual.Workflow != expected.Workflow ||
			actual.EntityId != expected.EntityId ||
			actual.EntityType != expected.EntityType ||
			actual.Status != expected.Status ||
			actual.Failure != expected.Failure ||
			!cmp.MapEq(actual.Outcomes, expected.Outcomes) {
			t.Errorf("event: actual=%+v, expect=%+v", actual, expected)
		}

		if err := testee.Close(); err != nil || !w.closed {
			t.Errorf("close: err=%v, closed=%v", err, w.closed)
		}
	})

	t.Run("it returns error of the writer", func(t *testing.T) {
		expected := errors.New("broker is down")
		testee := kevents.New(&fakeWriter{err: expected})
		if err := testee.Notify(context.Background(), exec); !errors.Is(err, expected) {
			t.Errorf("actual=%v, expect=%v", err, expected)
		}
	})
}
