// Package bench sequences the render, update and delete benchmark steps
// against a front-end and collects one latency sample per step.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rezi-ui/bench/todo-bench/internal/metrics"
	"github.com/rezi-ui/bench/todo-bench/internal/settle"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
)

const DefaultSettleDelay = 100 * time.Millisecond

// Publisher receives every new snapshot of the task collection and the
// results list. Implementations must only enqueue the change; painting it is
// what the Measurer waits for.
type Publisher interface {
	PublishTasks(tasks todo.List)
	PublishResults(samples []Sample)
}

type Measurer interface {
	Measure(ctx context.Context, mutation func() error) (settle.Result, error)
}

type nopPublisher struct{}

func (nopPublisher) PublishTasks(todo.List)    {}
func (nopPublisher) PublishResults([]Sample) {}

// Runner owns the task collection and results list of one front-end. Only
// one step, battery or edit runs at a time; overlapping calls get ErrBusy.
type Runner struct {
	flight sync.Mutex

	mu      sync.RWMutex
	tasks   todo.List
	results []Sample

	gen         *todo.Generator
	measurer    Measurer
	pub         Publisher
	clock       clock.Clock
	settleDelay time.Duration
	frontend    string
	logger      *slog.Logger
}

type Option func(*Runner)

func WithGenerator(g *todo.Generator) Option {
	return func(r *Runner) { r.gen = g }
}

func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithSettleDelay sets the pause after each run-all step and after the
// untimed baseline setup. Zero disables the pause.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Runner) { r.settleDelay = d }
}

func WithFrontend(name string) Option {
	return func(r *Runner) { r.frontend = name }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(m Measurer, pub Publisher, opts ...Option) *Runner {
	r := &Runner{
		measurer:    m,
		pub:         pub,
		settleDelay: DefaultSettleDelay,
		frontend:    "unknown",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pub == nil {
		r.pub = nopPublisher{}
	}
	if r.gen == nil {
		r.gen = todo.NewGenerator(nil)
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("frontend", r.frontend)
	return r
}

func (r *Runner) Frontend() string {
	return r.frontend
}

func (r *Runner) Generator() *todo.Generator {
	return r.gen
}

// Tasks returns the current task collection. The slice must not be modified.
func (r *Runner) Tasks() todo.List {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks
}

func (r *Runner) Results() []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Sample, len(r.results))
	copy(out, r.results)
	return out
}

// Render replaces the collection with count freshly generated tasks.
func (r *Runner) Render(ctx context.Context, count int) (Sample, error) {
	if !r.flight.TryLock() {
		return Sample{}, ErrBusy
	}
	defer r.flight.Unlock()
	return r.render(ctx, count)
}

// Update50 rewrites the first 50 tasks of a 1000-task baseline, alternating
// high and low priority.
func (r *Runner) Update50(ctx context.Context) (Sample, error) {
	if !r.flight.TryLock() {
		return Sample{}, ErrBusy
	}
	defer r.flight.Unlock()
	return r.update(ctx, UpdateAlternating)
}

// Delete50 removes the first 50 tasks of a 1000-task baseline.
func (r *Runner) Delete50(ctx context.Context) (Sample, error) {
	if !r.flight.TryLock() {
		return Sample{}, ErrBusy
	}
	defer r.flight.Unlock()
	return r.delete(ctx)
}

// Mutate applies a user edit to the collection and publishes the result.
func (r *Runner) Mutate(fn func(todo.List) (todo.List, error)) error {
	if !r.flight.TryLock() {
		return ErrBusy
	}
	defer r.flight.Unlock()

	next, err := fn(r.Tasks())
	if err != nil {
		return err
	}
	r.setTasks(next)
	return nil
}

// RunAll clears the results and runs Render 100, Render 500, Render 1000,
// Update 50 and Delete 50, pausing for the settle delay after each. On
// failure the samples collected so far are returned with the error.
func (r *Runner) RunAll(ctx context.Context) (Report, error) {
	if !r.flight.TryLock() {
		return Report{}, ErrBusy
	}
	defer r.flight.Unlock()

	r.setResults(nil)
	rep := Report{Frontend: r.frontend, StartedAt: r.clock.Now()}

	steps := []func(context.Context) (Sample, error){
		func(ctx context.Context) (Sample, error) { return r.render(ctx, 100) },
		func(ctx context.Context) (Sample, error) { return r.render(ctx, 500) },
		func(ctx context.Context) (Sample, error) { return r.render(ctx, BaselineSize) },
		func(ctx context.Context) (Sample, error) { return r.update(ctx, UpdateAllHigh) },
		r.delete,
	}

	for _, step := range steps {
		s, err := step(ctx)
		if err == nil {
			rep.Samples = append(rep.Samples, s)
			err = settle.Sleep(ctx, r.clock, r.settleDelay)
		}
		if err != nil {
			rep.FinishedAt = r.clock.Now()
			metrics.RecordRun(r.frontend, "failed")
			r.logger.Error("benchmark run aborted", "completed", len(rep.Samples), "error", err)
			return rep, fmt.Errorf("%w: %w", ErrRunFailed, err)
		}
	}

	rep.FinishedAt = r.clock.Now()
	metrics.RecordRun(r.frontend, "ok")
	r.logReport(rep)
	return rep, nil
}

func (r *Runner) logReport(rep Report) {
	data, err := rep.MarshalJSON()
	if err != nil {
		r.logger.Warn("failed to encode benchmark report", "error", err)
		return
	}
	r.logger.Info("benchmark run complete", "results", string(data))
}

func (r *Runner) render(ctx context.Context, count int) (Sample, error) {
	return r.measure(ctx, RenderOp(count), func() error {
		tasks, err := r.gen.Generate(count)
		if err != nil {
			return err
		}
		r.setTasks(tasks)
		return nil
	})
}

func (r *Runner) update(ctx context.Context, rewrite func(todo.List, int) todo.List) (Sample, error) {
	if err := r.ensureBaseline(ctx); err != nil {
		return Sample{}, &StepError{Operation: OpUpdate50, Err: err}
	}
	return r.measure(ctx, OpUpdate50, func() error {
		r.setTasks(rewrite(r.Tasks(), PartialSize))
		return nil
	})
}

func (r *Runner) delete(ctx context.Context) (Sample, error) {
	if err := r.ensureBaseline(ctx); err != nil {
		return Sample{}, &StepError{Operation: OpDelete50, Err: err}
	}
	return r.measure(ctx, OpDelete50, func() error {
		r.setTasks(DropFirst(r.Tasks(), PartialSize))
		return nil
	})
}

// ensureBaseline publishes a fresh 1000-task workload when the collection is
// smaller than that, then lets it settle. The setup is not sampled.
func (r *Runner) ensureBaseline(ctx context.Context) error {
	if len(r.Tasks()) >= BaselineSize {
		return nil
	}
	tasks, err := r.gen.Generate(BaselineSize)
	if err != nil {
		return err
	}
	r.logger.Debug("publishing baseline before partial step", "size", BaselineSize)
	r.setTasks(tasks)
	return settle.Sleep(ctx, r.clock, r.settleDelay)
}

func (r *Runner) measure(ctx context.Context, op string, mutation func() error) (Sample, error) {
	res, err := r.measurer.Measure(ctx, mutation)
	if err != nil {
		metrics.RecordStepFailed(r.frontend, op)
		r.logger.Warn("benchmark step failed", "operation", op, "error", err)
		return Sample{}, &StepError{Operation: op, Err: err}
	}

	s := Sample{Operation: op, Duration: res.Duration, Degraded: res.Degraded}
	r.appendResult(s)
	metrics.RecordSample(r.frontend, op, s.Duration, s.Degraded)
	r.logger.Info("benchmark step", "operation", op, "duration_ms", s.Duration, "degraded", s.Degraded)
	return s, nil
}

func (r *Runner) setTasks(tasks todo.List) {
	r.mu.Lock()
	r.tasks = tasks
	r.mu.Unlock()
	metrics.UpdateCollectionSize(r.frontend, len(tasks))
	r.pub.PublishTasks(tasks)
}

func (r *Runner) setResults(samples []Sample) {
	r.mu.Lock()
	r.results = samples
	r.mu.Unlock()
	r.pub.PublishResults(r.Results())
}

func (r *Runner) appendResult(s Sample) {
	r.mu.Lock()
	next := make([]Sample, len(r.results), len(r.results)+1)
	copy(next, r.results)
	r.results = append(next, s)
	r.mu.Unlock()
	r.pub.PublishResults(r.Results())
}

// IsBusy reports whether err means another benchmark held the runner.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
