package workflows

import (
	"fmt"

	"github.com/musecrm/museflow/pkg/domain"
)

// Registry holds definitions of all workflow types.
type Registry struct {
	definitions map[domain.WorkflowType]*Definition
	abandon     *Definition
}

// NewRegistry builds definitions of all workflow types.
func NewRegistry(steps Steps, opts Options) (*Registry, error) {
	r := &Registry{definitions: map[domain.WorkflowType]*Definition{}}
	for _, wt := range domain.WorkflowTypes() {
		def, err := Define(wt, steps, opts)
		if err != nil {
			return nil, err
		}
		r.definitions[wt] = def
	}

	abandon, err := defineAbandon(steps, opts)
	if err != nil {
		return nil, err
	}
	r.abandon = abandon
	return r, nil
}

func (r *Registry) Get(wt domain.WorkflowType) (*Definition, error) {
	def, ok := r.definitions[wt]
	if !ok {
		return nil, fmt.Errorf("unknown workflow: %s", wt)
	}
	return def, nil
}
