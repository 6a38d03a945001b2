// Package settle times state mutations against the paint that shows them.
//
// A Timer records a start time, runs the mutation, then waits for two
// consecutive frames from a FrameSource before reading the clock again. One
// frame is not enough: the first paint opportunity may arrive before the
// pipeline has committed the change the mutation requested.
package settle

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rezi-ui/bench/todo-bench/internal/metrics"
)

type Result struct {
	Duration float64 // milliseconds, two decimals
	Degraded bool
}

type Timer struct {
	frames   FrameSource
	fallback FrameSource
	clock    clock.Clock
	logger   *slog.Logger
	strict   bool
	warnOnce sync.Once
}

type Option func(*Timer)

func WithClock(c clock.Clock) Option {
	return func(t *Timer) { t.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Timer) { t.logger = l }
}

// WithStrict makes Measure fail with ErrPlatformUnsupported instead of
// degrading to fixed delays when there is no frame source.
func WithStrict(strict bool) Option {
	return func(t *Timer) { t.strict = strict }
}

func WithFallback(fs FrameSource) Option {
	return func(t *Timer) { t.fallback = fs }
}

// NewTimer returns a Timer waiting on frames. frames may be nil.
func NewTimer(frames FrameSource, opts ...Option) *Timer {
	t := &Timer{frames: frames}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = clock.New()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.fallback == nil {
		t.fallback = DelayFrames{Clock: t.clock}
	}
	return t
}

// Measure runs mutation and resolves once two frames have been painted after
// it returned. It is not safe to overlap calls against the same state.
func (t *Timer) Measure(ctx context.Context, mutation func() error) (Result, error) {
	frames, degraded := t.frames, false
	if frames == nil {
		if t.strict {
			return Result{}, ErrPlatformUnsupported
		}
		t.warnOnce.Do(func() {
			t.logger.Warn("no frame source, timing with fixed delays; samples are approximate")
		})
		frames, degraded = t.fallback, true
		metrics.RecordDegraded()
	}

	start := t.clock.Now()
	if err := run(mutation); err != nil {
		return Result{}, &MeasurementError{Err: err}
	}

	if err := frames.NextFrame(ctx); err != nil {
		return Result{}, fmt.Errorf("waiting for first frame: %w", err)
	}
	if err := frames.NextFrame(ctx); err != nil {
		return Result{}, fmt.Errorf("waiting for second frame: %w", err)
	}

	return Result{
		Duration: Millis(t.clock.Since(start)),
		Degraded: degraded,
	}, nil
}

func run(mutation func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return mutation()
}

// Millis converts d to milliseconds rounded to two decimals, never negative.
func Millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
