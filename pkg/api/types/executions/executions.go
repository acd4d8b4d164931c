package executions

import (
	"github.com/musecrm/museflow/pkg/utils/rfctime"
)

type Entity struct {
	Id       string `json:"id"`
	Type     string `json:"type"`
	ParentId string `json:"parentId,omitempty"`
}

// Detail of a workflow execution.
//
// This is the body of lifecycle hooks, and the response of the execution api.
type Detail struct {
	ExecutionId    string            `json:"executionId"`
	Workflow       string            `json:"workflow"`
	Entity         Entity            `json:"entity"`
	SubscriptionId string            `json:"subscriptionId"`
	Status         string            `json:"status"`
	Outcomes       map[string]string `json:"outcomes"`
	Failure        string            `json:"failure,omitempty"`
	Attempt        int               `json:"attempt"`
	CreatedAt      rfctime.RFC3339   `json:"createdAt"`
	UpdatedAt      rfctime.RFC3339   `json:"updatedAt"`
}
