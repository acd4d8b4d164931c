// Package http is the client side of HTTP collaborators, like asset processors and purge endpoints.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// NewClient returns a pooled client with timeout per request.
//
// Zero timeout means no timeout.
func NewClient(timeout time.Duration) *http.Client {
	c := cleanhttp.DefaultPooledClient()
	c.Timeout = timeout
	return c
}

// Classify tells whether a round trip has failed, and whether it is worth retrying.
//
// It returns nil for 2xx responses.
// Transport errors, 429 and 5xx (except 501) are returned as they are, to be retried.
// Others are wrapped with ErrPermanent.
//
// resp.Body is read but not closed.
func Classify(ctx context.Context, resp *http.Response, err error) error {
	if err == nil && 200 <= resp.StatusCode && resp.StatusCode < 300 {
		return nil
	}

	retryable, _ := retryablehttp.DefaultRetryPolicy(ctx, resp, err)

	cause := err
	if cause == nil {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		cause = fmt.Errorf("%s %s: %s: %s", resp.Request.Method, resp.Request.URL, resp.Status, bytes.TrimSpace(body))
	}
	if retryable || ctx.Err() != nil {
		return cause
	}
	return fmt.Errorf("%w: %w", kerr.ErrPermanent, cause)
}

// PostJSON sends body as JSON, and classifies the response with Classify.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return xe.Wrap(fmt.Errorf("%w: %w", kerr.ErrPermanent, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return xe.Wrap(fmt.Errorf("%w: %w", kerr.ErrPermanent, err))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if resp != nil {
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()
	}
	return Classify(ctx, resp, err)
}
