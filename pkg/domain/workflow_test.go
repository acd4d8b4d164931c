package domain_test

import (
	"testing"

	"github.com/musecrm/museflow/pkg/domain"
)

func TestWorkflowTypes(t *testing.T) {
	wts := domain.WorkflowTypes()
	if len(wts) != 9 {
		t.Fatalf("number of workflow types: actual=%d, expect=%d", len(wts), 9)
	}

	seen := map[string]bool{}
	for _, wt := range wts {
		name := wt.String()
		if seen[name] {
			t.Errorf("duplicated: %s", name)
		}
		seen[name] = true

		parsed, err := domain.AsWorkflowType(name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if parsed != wt {
			t.Errorf("%s: actual=%+v, expect=%+v", name, parsed, wt)
		}
	}
}

func TestAsWorkflowType_Invalid(t *testing.T) {
	for _, s := range []string{"", "create", "create-", "publish-exhibit", "create-museum"} {
		if _, err := domain.AsWorkflowType(s); err == nil {
			t.Errorf("%q: expected error is not returned", s)
		}
	}
}
