package http

import (
	"context"
	"net/http"

	"github.com/musecrm/museflow/pkg/cdn"
	khttp "github.com/musecrm/museflow/pkg/conn/http"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// Invalidation is the body sent to the purge endpoint.
type Invalidation struct {
	CallerReference string   `json:"callerReference"`
	Paths           []string `json:"paths"`
}

// Invalidator posts invalidations to a purge endpoint.
//
// Rate limiting and 5xx are retryable. Other non-2xx responses (like validation errors) are permanent.
type Invalidator struct {
	client *http.Client
	url    string
}

var _ cdn.Invalidator = &Invalidator{}

func New(client *http.Client, url string) *Invalidator {
	return &Invalidator{client: client, url: url}
}

func (i *Invalidator) Invalidate(ctx context.Context, callerReference string, patterns []string) error {
	header := http.Header{}
	header.Set("Idempotency-Key", callerReference)
	return xe.Wrap(khttp.PostJSON(
		ctx, i.client, i.url, header,
		Invalidation{CallerReference: callerReference, Paths: patterns},
	))
}
