// Package headless paints the todo view into a byte sink on a fixed frame
// clock. It needs no terminal, so it is the front-end for unattended runs.
package headless

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/settle"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
	"github.com/rezi-ui/bench/todo-bench/internal/view"
)

const Name = "headless"

type Options struct {
	Out    io.Writer
	FPS    int
	Clock  clock.Clock
	Logger *slog.Logger
}

// Surface is a Publisher and FrameSource. Snapshots land in a pending state
// that the next frame paints.
type Surface struct {
	mu    sync.Mutex
	state view.State
	dirty bool

	writer *view.MeasuringWriter
	frames *settle.ClockFrames
	logger *slog.Logger
}

func New(opts Options) *Surface {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Surface{
		state:  view.State{Title: "Todo List (headless)"},
		dirty:  true,
		writer: view.NewMeasuringWriter(opts.Out),
		logger: logger.With("frontend", Name),
	}
	s.frames = settle.NewClockFrames(opts.Clock, opts.FPS, s.paint)
	return s
}

func (s *Surface) Start() {
	s.logger.Debug("frame clock started", "interval", s.frames.Interval())
	s.frames.Start()
}

func (s *Surface) Stop() {
	s.frames.Stop()
}

func (s *Surface) PublishTasks(tasks todo.List) {
	s.mu.Lock()
	s.state.Tasks = tasks
	s.dirty = true
	s.mu.Unlock()
}

func (s *Surface) PublishResults(samples []bench.Sample) {
	s.mu.Lock()
	s.state.Results = samples
	s.dirty = true
	s.mu.Unlock()
}

func (s *Surface) NextFrame(ctx context.Context) error {
	return s.frames.NextFrame(ctx)
}

// Stats reports painted frames and bytes written to the sink.
func (s *Surface) Stats() (frames int64, bytesWritten int64) {
	bytesWritten, _ = s.writer.Snapshot()
	return s.frames.Frames(), bytesWritten
}

// paint renders the pending state. Clean frames are skipped, as a
// compositor would skip an unchanged layer.
func (s *Surface) paint() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	state := s.state
	s.dirty = false
	s.mu.Unlock()

	if _, err := io.WriteString(s.writer, view.Render(state)+"\n"); err != nil {
		s.logger.Warn("failed to paint frame", "error", err)
	}
}
