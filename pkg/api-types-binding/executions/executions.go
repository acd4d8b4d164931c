package executions

import (
	apiexecutions "github.com/musecrm/museflow/pkg/api/types/executions"
	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/utils/rfctime"
)

func ComposeDetail(exec domain.Execution) apiexecutions.Detail {
	outcomes := make(map[string]string, len(exec.Outcomes))
	for k, v := range exec.Outcomes {
		outcomes[k] = v.String()
	}
	return apiexecutions.Detail{
		ExecutionId: exec.ExecutionId,
		Workflow:    exec.Workflow.String(),
		Entity: apiexecutions.Entity{
			Id:       exec.Entity.Id,
			Type:     exec.Entity.Type.String(),
			ParentId: exec.Entity.ParentId,
		},
		SubscriptionId: exec.Actor.SubscriptionId,
		Status:         exec.Status.String(),
		Outcomes:       outcomes,
		Failure:        exec.Failure,
		Attempt:        exec.Attempt,
		CreatedAt:      rfctime.RFC3339(exec.CreatedAt),
		UpdatedAt:      rfctime.RFC3339(exec.UpdatedAt),
	}
}
