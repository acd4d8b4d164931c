package workflows

import (
	"fmt"

	"github.com/musecrm/museflow/pkg/domain"
)

// CachePaths returns path patterns to be invalidated after the workflow on the entity.
//
// Creating an entity invalidates the listing of its parent.
// Updating or deleting one also invalidates its own pages and assets.
// Institutions have no listing, so they invalidate their own pages instead.
func CachePaths(wt domain.WorkflowType, ref domain.EntityRef) []string {
	var own, listing string
	switch ref.Type {
	case domain.Institution:
		own = fmt.Sprintf("/institutions/%s*", ref.Id)
	case domain.Exhibition:
		own = fmt.Sprintf("/exhibitions/%s*", ref.Id)
		listing = fmt.Sprintf("/institutions/%s/exhibitions*", ref.ParentId)
	case domain.Exhibit:
		own = fmt.Sprintf("/exhibits/%s*", ref.Id)
		listing = fmt.Sprintf("/exhibitions/%s/exhibits*", ref.ParentId)
	default:
		return nil
	}

	if wt.Operation == domain.Create {
		if listing == "" {
			return []string{own}
		}
		return []string{listing}
	}

	paths := []string{fmt.Sprintf("/assets/%s/*", ref.Id), own}
	if listing != "" {
		paths = append(paths, listing)
	}
	return paths
}
