package saga_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/musecrm/museflow/pkg/domain"
	kerr "github.com/musecrm/museflow/pkg/domain/errors"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/musecrm/museflow/pkg/utils/cmp"
	"github.com/sirupsen/logrus"
)

// instantTimer fires immediately, remembering requested delays.
type instantTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (t *instantTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delays = append(t.delays, d)
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (t *instantTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration{}, t.delays...)
}

// calls counts invocations of actions by name.
type calls struct {
	mu    sync.Mutex
	count map[string]int
	order []string
}

func newCalls() *calls {
	return &calls{count: map[string]int{}}
}

func (c *calls) action(name string, results ...error) saga.Action[string] {
	return func(ctx context.Context, _ string) error {
		c.mu.Lock()
		n := c.count[name]
		c.count[name] = n + 1
		c.order = append(c.order, name)
		c.mu.Unlock()
		if n < len(results) {
			return results[n]
		}
		if len(results) == 0 {
			return nil
		}
		return results[len(results)-1]
	}
}

func (c *calls) Times(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count[name]
}

type countingObserver struct {
	mu       sync.Mutex
	attempts map[string]int
	finished map[string]domain.StepOutcome
}

func (o *countingObserver) StepAttempted(_ string, step string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts[step]++
}

func (o *countingObserver) StepFinished(_ string, step string, outcome domain.StepOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished[step] = outcome
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var errBoom = errors.New("boom")

// define builds a definition shaped like entity workflows:
//
//	fanout{qr, images} -> commit -> done
//
// every task is retried, and catches to {mark-error, unlock-on-error} -> failed.
func define(t *testing.T, c *calls, qr, images, commit saga.Action[string]) *saga.Definition[string] {
	t.Helper()
	b := saga.NewBuilder[string]("test")
	retry := saga.WithRetry(saga.DefaultRetryPolicy())

	onError := b.Sequence(
		b.Parallel(
			"on-error",
			saga.Branch("mark-error-branch", b.Task("mark-error", c.action("mark-error"), retry)),
			saga.Branch("unlock-on-error-branch", b.Task(
				"unlock-on-error", c.action("unlock-on-error"), retry, saga.Once("unlock"),
			)),
		),
		b.Fail("failed", "workflow failed"),
	)
	catch := saga.WithCatch(onError)

	start := b.Sequence(
		b.Parallel(
			"fanout",
			saga.Branch("qr-branch", b.Choice(
				"has-qr", func(in string) bool { return in != "" },
				b.Task("qr", qr, retry, catch), b.Pass("no-qr"),
			)),
			saga.Branch("images-branch", b.Task("images", images, retry, catch)),
		),
		b.Parallel(
			"commit",
			saga.Branch("activate-branch", b.Task("activate", commit, retry, catch)),
			saga.Branch("unlock-branch", b.Task(
				"unlock", c.action("unlock"), retry, catch, saga.Once("unlock"),
			)),
		),
		b.Succeed("done"),
	)

	def, err := b.Build(start)
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func TestRun_AllSucceeded(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr"), c.action("images"), c.action("activate"))
	timer := &instantTimer{}
	ob := &countingObserver{attempts: map[string]int{}, finished: map[string]domain.StepOutcome{}}
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(timer), saga.WithObserver(ob))

	journal := saga.NewMemoryJournal(nil)
	result := engine.Run(context.Background(), def, "with-qr", journal)

	if result.Status != domain.Succeeded || result.Err != nil || result.Interrupted {
		t.Fatalf("result: actual=%+v", result)
	}
	expected := map[string]domain.StepOutcome{
		"qr": domain.Success, "images": domain.Success,
		"qr-branch": domain.Success, "images-branch": domain.Success,
		"activate": domain.Success, "unlock": domain.Success,
		"activate-branch": domain.Success, "unlock-branch": domain.Success,
	}
	if !cmp.MapEq(result.Outcomes, expected) {
		t.Errorf("outcomes: actual=%v, expect=%v", result.Outcomes, expected)
	}
	if !cmp.MapEq(journal.Outcomes(), expected) {
		t.Errorf("journal: actual=%v, expect=%v", journal.Outcomes(), expected)
	}
	if !cmp.MapEq(ob.finished, expected) {
		t.Errorf("observed: actual=%v, expect=%v", ob.finished, expected)
	}
	if ob.attempts["qr"] != 1 || ob.attempts["unlock"] != 1 {
		t.Errorf("attempts: actual=%v", ob.attempts)
	}
	if c.Times("mark-error") != 0 || c.Times("unlock-on-error") != 0 {
		t.Error("catch handlers should not run")
	}
	if d := timer.Delays(); len(d) != 0 {
		t.Errorf("no retries are expected: %v", d)
	}
}

func TestRun_AbsentInputIsSkipped(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr"), c.action("images"), c.action("activate"))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	result := engine.Run(context.Background(), def, "", saga.NewMemoryJournal(nil))

	if result.Status != domain.Succeeded {
		t.Fatalf("result: actual=%+v", result)
	}
	if c.Times("qr") != 0 {
		t.Errorf("qr should not be invoked")
	}
	if o := result.Outcomes["qr-branch"]; o != domain.Skipped {
		t.Errorf("qr-branch: actual=%s, expect=%s", o, domain.Skipped)
	}
	if _, ok := result.Outcomes["qr"]; ok {
		t.Errorf("qr should have no outcome")
	}
}

func TestRun_RetryExhausted(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr", errBoom), c.action("images"), c.action("activate"))
	timer := &instantTimer{}
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(timer))

	result := engine.Run(context.Background(), def, "with-qr", saga.NewMemoryJournal(nil))

	if result.Status != domain.Failed || result.Interrupted {
		t.Fatalf("result: actual=%+v", result)
	}
	if !errors.Is(result.Err, errBoom) {
		t.Errorf("error should be caused by the task: %v", result.Err)
	}
	if fe := new(saga.FailError); !errors.As(result.Err, &fe) || fe.Step != "failed" {
		t.Errorf("error should be from Fail node: %v", result.Err)
	}

	if actual := c.Times("qr"); actual != 4 {
		t.Errorf("invocations of qr: actual=%d, expect=%d", actual, 4)
	}
	if !cmp.SliceEq(timer.Delays(), []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}) {
		t.Errorf("delays: actual=%v", timer.Delays())
	}

	if c.Times("mark-error") != 1 || c.Times("unlock-on-error") != 1 {
		t.Errorf("catch handler: mark-error=%d, unlock-on-error=%d", c.Times("mark-error"), c.Times("unlock-on-error"))
	}
	if c.Times("activate") != 0 || c.Times("unlock") != 0 {
		t.Error("commit should not run after failure")
	}
	if c.Times("images") != 1 {
		t.Error("sibling branch should run")
	}

	for step, expected := range map[string]domain.StepOutcome{
		"qr": domain.Failure, "qr-branch": domain.Failure,
		"images": domain.Success, "images-branch": domain.Success,
		"mark-error": domain.Success, "unlock-on-error": domain.Success,
	} {
		if actual := result.Outcomes[step]; actual != expected {
			t.Errorf("%s: actual=%s, expect=%s", step, actual, expected)
		}
	}
}

func TestRun_PermanentErrorIsNotRetried(t *testing.T) {
	c := newCalls()
	permanent := fmt.Errorf("%w: bad request", kerr.ErrPermanent)
	def := define(t, c, c.action("qr"), c.action("images", permanent), c.action("activate"))
	timer := &instantTimer{}
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(timer))

	result := engine.Run(context.Background(), def, "", saga.NewMemoryJournal(nil))

	if result.Status != domain.Failed || !errors.Is(result.Err, kerr.ErrPermanent) {
		t.Fatalf("result: actual=%+v", result)
	}
	if actual := c.Times("images"); actual != 1 {
		t.Errorf("invocations: actual=%d, expect=%d", actual, 1)
	}
	if len(timer.Delays()) != 0 {
		t.Errorf("delays: actual=%v", timer.Delays())
	}
}

func TestRun_RecoversOnThirdAttempt(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr"), c.action("images", errBoom, errBoom, nil), c.action("activate"))
	timer := &instantTimer{}
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(timer))

	result := engine.Run(context.Background(), def, "", saga.NewMemoryJournal(nil))

	if result.Status != domain.Succeeded {
		t.Fatalf("result: actual=%+v", result)
	}
	if c.Times("images") != 3 || c.Times("activate") != 1 || c.Times("unlock") != 1 {
		t.Errorf("calls: %v", c.count)
	}
	if !cmp.SliceEq(timer.Delays(), []time.Duration{time.Second, 2 * time.Second}) {
		t.Errorf("delays: actual=%v", timer.Delays())
	}
}

func TestRun_UnlockIsPerformedOnce(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr"), c.action("images"), c.action("activate", errBoom))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	result := engine.Run(context.Background(), def, "", saga.NewMemoryJournal(nil))

	if result.Status != domain.Failed {
		t.Fatalf("result: actual=%+v", result)
	}
	if actual := c.Times("unlock") + c.Times("unlock-on-error"); actual != 1 {
		t.Errorf("unlock should be invoked once: unlock=%d, unlock-on-error=%d", c.Times("unlock"), c.Times("unlock-on-error"))
	}
	if c.Times("mark-error") != 1 {
		t.Errorf("mark-error: actual=%d", c.Times("mark-error"))
	}
}

func TestRun_ResumesWithJournal(t *testing.T) {
	c := newCalls()
	def := define(t, c, c.action("qr"), c.action("images"), c.action("activate"))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	journal := saga.NewMemoryJournal(map[string]domain.StepOutcome{
		"qr-branch":     domain.Success,
		"images":        domain.Success,
		"unlock":        domain.Success,
		"unlock-branch": domain.Success,
	})
	result := engine.Run(context.Background(), def, "with-qr", journal)

	if result.Status != domain.Succeeded {
		t.Fatalf("result: actual=%+v", result)
	}
	if c.Times("qr") != 0 || c.Times("images") != 0 || c.Times("unlock") != 0 {
		t.Errorf("succeeded steps should not run again: %v", c.count)
	}
	if c.Times("activate") != 1 {
		t.Errorf("activate: actual=%d", c.Times("activate"))
	}
}

func TestRun_Interrupted(t *testing.T) {
	c := newCalls()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	images := func(ctx context.Context, _ string) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	def := define(t, c, c.action("qr"), images, c.action("activate"))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	journal := saga.NewMemoryJournal(nil)
	result := engine.Run(ctx, def, "", journal)

	if !result.Interrupted || !errors.Is(result.Err, saga.ErrInterrupted) {
		t.Fatalf("result: actual=%+v", result)
	}
	if result.Status != "" {
		t.Errorf("status: actual=%s", result.Status)
	}
	if c.Times("mark-error") != 0 || c.Times("unlock-on-error") != 0 {
		t.Error("catch handlers should not run on interruption")
	}
	if _, ok := journal.Outcome("images"); ok {
		t.Error("interrupted step should not be recorded")
	}
}

func TestRun_InterruptedAfterCatchHandlerIsFailed(t *testing.T) {
	c := newCalls()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	permanent := fmt.Errorf("%w: bad request", kerr.ErrPermanent)
	images := func(ctx context.Context, _ string) error {
		// keep working until the sibling has been handled, then shut down.
		for c.Times("unlock-on-error") == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	def := define(t, c, c.action("qr", permanent), images, c.action("activate"))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	journal := saga.NewMemoryJournal(nil)
	result := engine.Run(ctx, def, "with-qr", journal)

	if result.Interrupted || result.Status != domain.Failed {
		t.Fatalf("result: actual=%+v", result)
	}
	if !errors.Is(result.Err, kerr.ErrPermanent) {
		t.Errorf("error: actual=%v", result.Err)
	}
	if c.Times("mark-error") != 1 || c.Times("unlock-on-error") != 1 {
		t.Errorf("catch handlers: mark-error=%d, unlock-on-error=%d", c.Times("mark-error"), c.Times("unlock-on-error"))
	}
	if c.Times("activate") != 0 || c.Times("unlock") != 0 {
		t.Errorf("commit should not run: activate=%d, unlock=%d", c.Times("activate"), c.Times("unlock"))
	}
	if o, _ := journal.Outcome("qr"); o != domain.Failure {
		t.Errorf("qr: actual=%s, expect=%s", o, domain.Failure)
	}
}

func TestRun_ConcurrentHandlersKeepSuccessOfOnceGroup(t *testing.T) {
	for i := range 20 {
		t.Run(fmt.Sprintf("#%d", i), func(t *testing.T) {
			c := newCalls()
			permanent := fmt.Errorf("%w: bad request", kerr.ErrPermanent)
			def := define(t, c, c.action("qr", permanent), c.action("images", permanent), c.action("activate"))
			engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

			journal := saga.NewMemoryJournal(nil)
			result := engine.Run(context.Background(), def, "with-qr", journal)

			if result.Status != domain.Failed {
				t.Fatalf("result: actual=%+v", result)
			}
			if actual := c.Times("unlock-on-error"); actual != 1 {
				t.Errorf("unlock-on-error: actual=%d, expect=1", actual)
			}
			if actual := result.Outcomes["unlock-on-error"]; actual != domain.Success {
				t.Errorf("outcome: actual=%s, expect=%s", actual, domain.Success)
			}
			if actual, _ := journal.Outcome("unlock-on-error"); actual != domain.Success {
				t.Errorf("journal: actual=%s, expect=%s", actual, domain.Success)
			}
		})
	}
}

func TestRun_DeadlineRunsCatchHandler(t *testing.T) {
	c := newCalls()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	images := func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	def := define(t, c, c.action("qr"), images, c.action("activate"))
	engine := saga.New[string](saga.WithLogger(quiet()), saga.WithTimer(&instantTimer{}))

	result := engine.Run(ctx, def, "", saga.NewMemoryJournal(nil))

	if result.Interrupted || result.Status != domain.Failed {
		t.Fatalf("result: actual=%+v", result)
	}
	if !errors.Is(result.Err, context.DeadlineExceeded) {
		t.Errorf("error: actual=%v", result.Err)
	}
	if c.Times("mark-error") != 1 || c.Times("unlock-on-error") != 1 {
		t.Error("catch handlers should run after the deadline")
	}
}
