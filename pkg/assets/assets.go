// Package assets defines processors of media assets attached to entities.
package assets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
)

// Job is a request to a processor.
type Job struct {
	ExecutionId string           `json:"executionId"`
	Kind        domain.AssetKind `json:"kind"`
	Entity      Entity           `json:"entity"`
	Actor       domain.Actor     `json:"actor"`

	// the part of the asset bundle for Kind, as it is requested.
	Payload json.RawMessage `json:"payload"`
}

// Entity is the destination of assets.
type Entity struct {
	Id       string            `json:"id"`
	Type     domain.EntityType `json:"type"`
	ParentId string            `json:"parentId,omitempty"`
}

// NewJob returns the job of exec for kind.
func NewJob(exec domain.Execution, kind domain.AssetKind) Job {
	return Job{
		ExecutionId: exec.ExecutionId,
		Kind:        kind,
		Entity: Entity{
			Id: exec.Entity.Id, Type: exec.Entity.Type, ParentId: exec.Entity.ParentId,
		},
		Actor:   exec.Actor,
		Payload: exec.Assets.Payload(kind),
	}
}

// IdempotencyKey identifies the job across retries.
func (j Job) IdempotencyKey() string {
	return j.ExecutionId + "/" + j.Kind.String()
}

// Processor transforms, generates or deletes assets.
//
// Processing the same job twice must not duplicate nor corrupt outputs.
type Processor interface {
	// Process performs the job.
	//
	// Errors wrapping ErrPermanent are not worth retrying.
	Process(ctx context.Context, job Job) error
}

// Processors is a set of processors by kind.
type Processors map[domain.AssetKind]Processor

// Process passes job to the processor for its kind.
func (ps Processors) Process(ctx context.Context, job Job) error {
	p, ok := ps[job.Kind]
	if !ok {
		return fmt.Errorf("%w: no processor for %s", kerr.ErrPermanent, job.Kind)
	}
	return p.Process(ctx, job)
}
