package http

import (
	"context"
	"net/http"

	"github.com/musecrm/museflow/pkg/assets"
	khttp "github.com/musecrm/museflow/pkg/conn/http"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// Processor posts jobs to a processing service.
//
// 2xx responses mean success. 429, 5xx and transport errors are retryable.
type Processor struct {
	client *http.Client
	url    string
}

var _ assets.Processor = &Processor{}

func New(client *http.Client, url string) *Processor {
	return &Processor{client: client, url: url}
}

func (p *Processor) Process(ctx context.Context, job assets.Job) error {
	header := http.Header{}
	header.Set("Idempotency-Key", job.IdempotencyKey())
	return xe.Wrap(khttp.PostJSON(ctx, p.client, p.url, header, job))
}
