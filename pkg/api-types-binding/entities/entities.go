package entities

import (
	apientities "github.com/musecrm/museflow/pkg/api/types/entities"
	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/utils/rfctime"
)

func ComposeDetail(e domain.Entity) apientities.Detail {
	return apientities.Detail{
		Id:               e.Id,
		Type:             e.Type.String(),
		ParentId:         e.ParentId,
		SubscriptionId:   e.SubscriptionId,
		Status:           e.Status.String(),
		LanguageVariants: ComposeLanguageVariants(e.LanguageVariants),
		UpdatedAt:        rfctime.RFC3339(e.UpdatedAt),
	}
}

// ComposeAccepted tells the entity and the execution started for it.
func ComposeAccepted(exec domain.Execution, status domain.EntityStatus) apientities.Accepted {
	return apientities.Accepted{
		Id:          exec.Entity.Id,
		Type:        exec.Entity.Type.String(),
		Status:      status.String(),
		ExecutionId: exec.ExecutionId,
	}
}

func ComposeLanguageVariants(vs []domain.LanguageVariant) []apientities.LanguageVariant {
	ret := make([]apientities.LanguageVariant, 0, len(vs))
	for _, v := range vs {
		ret = append(ret, apientities.LanguageVariant{
			Lang:        v.Lang,
			Title:       v.Title,
			Subtitle:    v.Subtitle,
			Description: v.Description,
		})
	}
	return ret
}

// BindLanguageVariants converts request values into domain values.
//
// nil is kept nil, so that updates without variants keep the current ones.
func BindLanguageVariants(vs []apientities.LanguageVariant) []domain.LanguageVariant {
	if vs == nil {
		return nil
	}
	ret := make([]domain.LanguageVariant, 0, len(vs))
	for _, v := range vs {
		ret = append(ret, domain.LanguageVariant{
			Lang:        v.Lang,
			Title:       v.Title,
			Subtitle:    v.Subtitle,
			Description: v.Description,
		})
	}
	return ret
}

func BindAssets(a apientities.Assets) domain.AssetBundle {
	return domain.AssetBundle{
		Images: a.Images,
		Audios: a.Audios,
		QRCode: a.QRCode,
		Delete: a.Delete,
	}
}
