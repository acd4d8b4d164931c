// Package events publishes outcomes of finished executions.
package events

import (
	"context"

	"github.com/musecrm/museflow/pkg/domain"
	"github.com/sirupsen/logrus"
)

// Notifier publishes a finished execution.
type Notifier interface {
	Notify(ctx context.Context, exec domain.Execution) error
}

// Event is the body of a notification.
type Event struct {
	ExecutionId string                        `json:"executionId"`
	Workflow    string                        `json:"workflow"`
	EntityId    string                        `json:"entityId"`
	EntityType  string                        `json:"entityType"`
	Status      string                        `json:"status"`
	Outcomes    map[string]domain.StepOutcome `json:"outcomes"`
	Failure     string                        `json:"failure,omitempty"`
}

func NewEvent(exec domain.Execution) Event {
	outcomes := exec.Outcomes
	if outcomes == nil {
		outcomes = map[string]domain.StepOutcome{}
	}
	return Event{
		ExecutionId: exec.ExecutionId,
		Workflow:    exec.Workflow.String(),
		EntityId:    exec.Entity.Id,
		EntityType:  exec.Entity.Type.String(),
		Status:      exec.Status.String(),
		Outcomes:    outcomes,
		Failure:     exec.Failure,
	}
}

// None is a Notifier which only logs.
type None struct {
	Log logrus.FieldLogger
}

func (n None) Notify(_ context.Context, exec domain.Execution) error {
	if n.Log != nil {
		n.Log.WithField("executionId", exec.ExecutionId).
			WithField("status", exec.Status).
			Debug("no notifier is configured")
	}
	return nil
}
