package hook

import (
	"net/http"

	apiexecutions "github.com/musecrm/museflow/pkg/api/types/executions"
	cfg_hook "github.com/musecrm/museflow/pkg/configs/hook"
)

// Build makes a lifecycle hook of executions.
func Build(cfg cfg_hook.WebHook, client *http.Client) Web[apiexecutions.Detail] {
	return Web[apiexecutions.Detail]{
		BeforeURL: cfg.Before,
		AfterURL:  cfg.After,
		Client:    client,
	}
}
