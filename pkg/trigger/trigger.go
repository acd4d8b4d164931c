// Package trigger accepts mutation requests and starts their workflows.
//
// The caller does not wait for the workflow. The entity is written and the subscription is locked
// before Start returns, and its status moves later as the workflow runs.
package trigger

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// ErrInvalidRequest is returned when the request does not pass validation.
//
// The validation.Errors describing each field is also wrapped.
var ErrInvalidRequest = errors.New("invalid request")

// Request is a mutation of an entity.
type Request struct {
	Operation domain.Operation
	Type      domain.EntityType

	// Id of the entity to be updated or deleted. Empty for create.
	Id string

	// Id of the owner of the entity to be created.
	ParentId string

	LanguageVariants []domain.LanguageVariant
	Assets           domain.AssetBundle
	Actor            domain.Actor
}

func (r Request) Workflow() domain.WorkflowType {
	return domain.WorkflowType{Entity: r.Type, Operation: r.Operation}
}

// Validate checks the request. The returned error is validation.Errors, or nil.
func (r Request) Validate() error {
	_, hasParent := r.Type.Parent()
	create := r.Operation == domain.Create

	variantRules := []validation.Rule{validation.By(uniqueLanguages)}
	if create {
		variantRules = append(variantRules, validation.Required)
	}
	variants := validation.Validate(r.LanguageVariants, variantRules...)
	if variants == nil {
		variants = validateVariants(r.LanguageVariants, create)
	}

	return validation.Errors{
		"operation": validation.Validate(
			string(r.Operation),
			validation.Required,
			validation.In(string(domain.Create), string(domain.Update), string(domain.Delete)),
		),
		"type": validation.Validate(
			string(r.Type),
			validation.Required,
			validation.In(string(domain.Institution), string(domain.Exhibition), string(domain.Exhibit)),
		),
		"id": validation.Validate(
			r.Id,
			validation.When(create, validation.Empty).Else(validation.Required),
		),
		"parentId": validation.Validate(
			r.ParentId,
			validation.When(create && hasParent, validation.Required),
			validation.When(!create || !hasParent, validation.Empty),
		),
		"languageVariants":     variants,
		"actor.subscriptionId": validation.Validate(r.Actor.SubscriptionId, validation.Required),
	}.Filter()
}

func validateVariants(vs []domain.LanguageVariant, create bool) error {
	errs := validation.Errors{}
	for i := range vs {
		v := vs[i]
		err := validation.ValidateStruct(
			&v,
			validation.Field(&v.Lang, validation.Required),
			validation.Field(&v.Title, validation.When(create, validation.Required)),
		)
		if err != nil {
			errs[fmt.Sprintf("%d", i)] = err
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func uniqueLanguages(value any) error {
	vs, _ := value.([]domain.LanguageVariant)
	seen := map[string]struct{}{}
	for _, v := range vs {
		if _, ok := seen[v.Lang]; ok {
			return fmt.Errorf("language '%s' is duplicated", v.Lang)
		}
		seen[v.Lang] = struct{}{}
	}
	return nil
}

// Recorder counts trigger requests by result.
type Recorder interface {
	Triggered(wt domain.WorkflowType, result string)
}

type Trigger struct {
	queue    kworkflow.WorkflowInterface
	newId    func() string
	recorder Recorder
}

type Option func(*Trigger)

// WithIdGenerator replaces the generator of entity and execution ids.
func WithIdGenerator(f func() string) Option {
	return func(t *Trigger) { t.newId = f }
}

func WithRecorder(r Recorder) Option {
	return func(t *Trigger) { t.recorder = r }
}

func New(queue kworkflow.WorkflowInterface, opts ...Option) *Trigger {
	t := &Trigger{queue: queue, newId: uuid.NewString}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Start validates the request, and queues an execution for it.
//
// Returns
//
// - domain.Execution: the queued execution. Its Entity.Id is the id of the entity (generated for create).
//
// - error: ErrInvalidRequest, or errors from WorkflowInterface.Start.
func (t *Trigger) Start(ctx context.Context, req Request) (domain.Execution, error) {
	if err := req.Validate(); err != nil {
		t.record(req.Workflow(), "invalid")
		return domain.Execution{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	id := req.Id
	if req.Operation == domain.Create {
		id = t.newId()
	}

	exec, err := t.queue.Start(ctx, domain.ExecutionRequest{
		ExecutionId: t.newId(),
		Workflow:    req.Workflow(),
		Entity: domain.Entity{
			EntityRef: domain.EntityRef{
				Id:       id,
				Type:     req.Type,
				ParentId: req.ParentId,
			},
			SubscriptionId:   req.Actor.SubscriptionId,
			LanguageVariants: req.LanguageVariants,
		},
		Actor:  req.Actor,
		Assets: req.Assets,
	})
	t.record(req.Workflow(), result(err))
	if err != nil {
		return domain.Execution{}, xe.Wrap(err)
	}
	return exec, nil
}

func (t *Trigger) record(wt domain.WorkflowType, result string) {
	if t.recorder != nil {
		t.recorder.Triggered(wt, result)
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, kerr.ErrSubscriptionLocked):
		return "locked"
	case errors.Is(err, kerr.ErrInvalidParent):
		return "invalid-parent"
	case errors.Is(err, kerr.ErrMissing):
		return "missing"
	case errors.Is(err, kerr.ErrConflict), errors.Is(err, kerr.ErrInvalidStatusChanging):
		return "conflict"
	default:
		return "error"
	}
}
