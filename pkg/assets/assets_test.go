package assets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/musecrm/museflow/pkg/assets"
	"github.com/musecrm/museflow/pkg/assets/mock"
	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
)

func TestProcessors(t *testing.T) {
	images := mock.New()
	images.Impl.Process = func(context.Context, assets.Job) error { return nil }
	ps := assets.Processors{domain.Images: images}

	if err := ps.Process(context.Background(), assets.Job{Kind: domain.Images}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(images.Jobs()) != 1 {
		t.Errorf("calls: actual=%d", len(images.Jobs()))
	}

	if err := ps.Process(context.Background(), assets.Job{Kind: domain.Audios}); !errors.Is(err, kerr.ErrPermanent) {
		t.Errorf("unknown kind should be a permanent failure: %v", err)
	}
}

func TestNewJob_AbsentPayloadIsNil(t *testing.T) {
	job := assets.NewJob(domain.Execution{ExecutionId: "exec-1"}, domain.QRCode)
	if job.Payload != nil {
		t.Errorf("payload: actual=%s", job.Payload)
	}
	if job.IdempotencyKey() != "exec-1/qrCode" {
		t.Errorf("key: actual=%s", job.IdempotencyKey())
	}
}
