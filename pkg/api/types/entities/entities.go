package entities

import (
	"encoding/json"

	"github.com/musecrm/museflow/pkg/utils/rfctime"
)

type LanguageVariant struct {
	Lang        string `json:"lang"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
}

// Assets is the set of media operations attached to a mutation.
//
// Each part is passed to its processor as it is.
type Assets struct {
	Images json.RawMessage `json:"images,omitempty"`
	Audios json.RawMessage `json:"audios,omitempty"`
	QRCode json.RawMessage `json:"qrCode,omitempty"`
	Delete json.RawMessage `json:"delete,omitempty"`
}

type Actor struct {
	SubscriptionId string `json:"subscriptionId"`
}

// Mutation is the request body of create, update and delete.
type Mutation struct {
	// Id of the owner. Required for creating exhibitions and exhibits.
	ParentId string `json:"parentId,omitempty"`

	LanguageVariants []LanguageVariant `json:"languageVariants,omitempty"`
	Assets           Assets            `json:"assets"`
	Actor            Actor             `json:"actor"`
}

// Accepted is the response of a mutation.
//
// The entity changes its status later, as the workflow goes on.
type Accepted struct {
	Id          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	ExecutionId string `json:"executionId"`
}

type Detail struct {
	Id               string            `json:"id"`
	Type             string            `json:"type"`
	ParentId         string            `json:"parentId,omitempty"`
	SubscriptionId   string            `json:"subscriptionId"`
	Status           string            `json:"status"`
	LanguageVariants []LanguageVariant `json:"languageVariants"`
	UpdatedAt        rfctime.RFC3339   `json:"updatedAt"`
}
