package saga

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/musecrm/museflow/pkg/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine runs definitions.
type Engine[T any] struct {
	log            logrus.FieldLogger
	timer          retry.Timer
	observer       Observer
	handlerTimeout time.Duration
}

type Option func(*options)

type options struct {
	log            logrus.FieldLogger
	timer          retry.Timer
	observer       Observer
	handlerTimeout time.Duration
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTimer replaces the timer waiting between retries.
func WithTimer(t retry.Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

func WithObserver(ob Observer) Option {
	return func(o *options) {
		o.observer = ob
	}
}

// WithHandlerTimeout bounds each run of catch handlers.
//
// Handlers run even after the deadline of the run, until this timeout.
// Default is 1 minute.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *options) {
		o.handlerTimeout = d
	}
}

func New[T any](opts ...Option) *Engine[T] {
	o := options{
		log:            logrus.StandardLogger(),
		observer:       nopObserver{},
		handlerTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[T]{
		log:            o.log,
		timer:          o.timer,
		observer:       o.observer,
		handlerTimeout: o.handlerTimeout,
	}
}

// With returns a copy of e logging to log.
func (e *Engine[T]) With(log logrus.FieldLogger) *Engine[T] {
	c := *e
	c.log = log
	return &c
}

// Run runs def with input.
//
// Tasks and branches already succeeded in journal are not run again,
// and new outcomes are recorded to journal as soon as they are decided.
//
// When ctx is cancelled, Run returns an interrupted result,
// unless a catch handler has started; then the run is Failed.
// When ctx exceeds its deadline, running tasks fail and their catch handlers run.
func (e *Engine[T]) Run(ctx context.Context, def *Definition[T], input T, journal Journal) Result {
	r := &run[T]{
		engine:   e,
		def:      def,
		input:    input,
		journal:  journal,
		log:      e.log.WithField("definition", def.name),
		outcomes: map[string]domain.StepOutcome{},
		once:     map[string]*onceGroup{},
	}
	for _, n := range def.nodes {
		t, ok := n.(*taskNode[T])
		if !ok || t.once == "" {
			continue
		}
		g := r.group(t.once)
		if o, ok := journal.Outcome(t.name); ok && o == domain.Success {
			g.done = true
		}
	}

	_, err := r.walk(ctx, def.start, nil)
	outcomes := r.snapshot()

	if err != nil && r.handled.Load() {
		// catch handlers have changed the world. the run cannot be resumed.
		return Result{Status: domain.Failed, Outcomes: outcomes, Err: err}
	}
	if errors.Is(err, ErrInterrupted) || (err != nil && interrupted(ctx)) {
		r.log.Warn("interrupted")
		return Result{Outcomes: outcomes, Err: ErrInterrupted, Interrupted: true}
	}
	if err != nil {
		return Result{Status: domain.Failed, Outcomes: outcomes, Err: err}
	}
	return Result{Status: domain.Succeeded, Outcomes: outcomes}
}

// interrupted tells whether ctx is cancelled from outside, not by its deadline.
func interrupted(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

type onceGroup struct {
	mu   sync.Mutex
	done bool
}

type run[T any] struct {
	engine  *Engine[T]
	def     *Definition[T]
	input   T
	journal Journal
	log     logrus.FieldLogger

	mu       sync.Mutex
	outcomes map[string]domain.StepOutcome
	once     map[string]*onceGroup

	// handled is set once any catch handler has started.
	handled atomic.Bool
}

func (r *run[T]) group(name string) *onceGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.once[name]
	if !ok {
		g = &onceGroup{}
		r.once[name] = g
	}
	return g
}

func (r *run[T]) snapshot() map[string]domain.StepOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make(map[string]domain.StepOutcome, len(r.outcomes))
	for k, v := range r.outcomes {
		ret[k] = v
	}
	return ret
}

// journaled returns the outcome of step in the journal, or in this run.
func (r *run[T]) journaled(step string) (domain.StepOutcome, bool) {
	r.mu.Lock()
	o, ok := r.outcomes[step]
	r.mu.Unlock()
	if ok {
		return o, true
	}
	return r.journal.Outcome(step)
}

// decide fixes the outcome of a step, and records it.
//
// Recording survives the deadline of ctx.
// A failure of recording does not change the result of the run;
// the step is just run again when the execution is resumed.
func (r *run[T]) decide(ctx context.Context, step string, outcome domain.StepOutcome, fresh bool) {
	r.mu.Lock()
	r.outcomes[step] = outcome
	r.mu.Unlock()

	r.engine.observer.StepFinished(r.def.name, step, outcome)
	if !fresh {
		return
	}
	if err := r.journal.Record(context.WithoutCancel(ctx), step, outcome); err != nil {
		r.log.WithError(err).WithField("step", step).Warn("failed to record outcome")
	}
}

// walk runs the path from id until its end.
//
// cause is the failure which the path handles, if it is a catch handler.
//
// It reports whether any task has been run (or found succeeded) on the path.
func (r *run[T]) walk(ctx context.Context, id NodeID, cause error) (bool, error) {
	worked := false
	for id != End {
		switch n := r.def.nodes[id].(type) {
		case *taskNode[T]:
			w, caught, err := r.task(ctx, n)
			worked = worked || w
			if caught || err != nil {
				return worked, err
			}
		case *choiceNode[T]:
			path := n.otherwise
			if n.cond(r.input) {
				path = n.then
			}
			w, err := r.walk(ctx, path, cause)
			worked = worked || w
			if err != nil {
				return worked, err
			}
		case *passNode:
		case *parallelNode:
			w, err := r.parallel(ctx, n, cause)
			worked = worked || w
			if err != nil {
				return worked, err
			}
		case *succeedNode:
			return worked, nil
		case *failNode:
			return worked, &FailError{Step: n.name, Cause: n.cause, Err: cause}
		}
		id = r.def.nodes[id].self().next
	}
	return worked, nil
}

// task runs a task node.
//
// caught is true when the task has failed and its catch handler has run.
// Then the path of the task ends with err.
func (r *run[T]) task(ctx context.Context, n *taskNode[T]) (worked bool, caught bool, err error) {
	log := r.log.WithField("step", n.name)

	if o, ok := r.journaled(n.name); ok && o == domain.Success {
		log.Debug("succeeded already")
		r.decide(ctx, n.name, domain.Success, false)
		return true, false, nil
	}

	if interrupted(ctx) {
		return false, false, ErrInterrupted
	}

	var ierr error
	if n.once == "" {
		ierr = r.invoke(ctx, log, n)
	} else {
		g := r.group(n.once)
		g.mu.Lock()
		if g.done {
			g.mu.Unlock()
			if o, ok := r.journaled(n.name); ok && o == domain.Success {
				return true, false, nil
			}
			log.WithField("once", n.once).Debug("skipped: the group has succeeded")
			r.decide(ctx, n.name, domain.Skipped, true)
			return false, false, nil
		}
		ierr = r.invoke(ctx, log, n)
		if ierr == nil {
			g.done = true
			r.decide(ctx, n.name, domain.Success, true)
		}
		g.mu.Unlock()
		if ierr == nil {
			return true, false, nil
		}
	}

	if ierr == nil {
		r.decide(ctx, n.name, domain.Success, true)
		return true, false, nil
	}
	if interrupted(ctx) {
		return true, false, ErrInterrupted
	}

	log.WithError(ierr).Warn("failed")
	r.decide(ctx, n.name, domain.Failure, true)
	failure := &StepError{Step: n.name, Err: ierr}
	if n.catch == End {
		return true, false, failure
	}

	r.handled.Store(true)
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.engine.handlerTimeout)
	defer cancel()
	_, herr := r.walk(hctx, n.catch, failure)
	if herr == nil {
		// recovered. the path ends here.
		return true, true, nil
	}
	if !errors.Is(herr, failure) {
		herr = multierror.Append(failure, herr)
	}
	return true, true, herr
}

func (r *run[T]) invoke(ctx context.Context, log logrus.FieldLogger, n *taskNode[T]) error {
	attempt := func() error {
		err := n.action(ctx, r.input)
		r.engine.observer.StepAttempted(r.def.name, n.name, err)
		return err
	}
	if n.retry == nil {
		return attempt()
	}

	opts := append(
		n.retry.options(),
		retry.Context(ctx),
		retry.OnRetry(func(i uint, err error) {
			log.WithError(err).WithField("attempt", i+1).Info("attempt failed")
		}),
	)
	if r.engine.timer != nil {
		opts = append(opts, retry.WithTimer(r.engine.timer))
	}
	return retry.Do(attempt, opts...)
}

// parallel runs all branches of n, and waits for all of them.
func (r *run[T]) parallel(ctx context.Context, n *parallelNode, cause error) (bool, error) {
	worked := make([]bool, len(n.branches))
	errs := make([]error, len(n.branches))

	var eg errgroup.Group
	for i, br := range n.branches {
		eg.Go(func() error {
			if o, ok := r.journaled(br.name); ok && (o == domain.Success || o == domain.Skipped) {
				r.decide(ctx, br.name, o, false)
				worked[i] = o == domain.Success
				return nil
			}

			w, err := r.walk(ctx, br.start, cause)
			worked[i], errs[i] = w, err
			switch {
			case errors.Is(err, ErrInterrupted):
			case err != nil:
				r.decide(ctx, br.name, domain.Failure, true)
			case w:
				r.decide(ctx, br.name, domain.Success, true)
			default:
				r.decide(ctx, br.name, domain.Skipped, true)
			}
			return nil
		})
	}
	eg.Wait()

	anyWorked := false
	var merr *multierror.Error
	for i := range n.branches {
		anyWorked = anyWorked || worked[i]
		if errs[i] != nil {
			merr = multierror.Append(merr, errs[i])
		}
	}
	return anyWorked, merr.ErrorOrNil()
}
