// Package tui is the Bubble Tea front-end. Surface drives a tea.Program and
// serves as both the Publisher and the FrameSource of a bench.Runner.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/report"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
	"github.com/rezi-ui/bench/todo-bench/internal/view"
)

const (
	Name = "tui"

	defaultFrameTimeout   = 3 * time.Second
	defaultStartupTimeout = 3 * time.Second
	shutdownTimeout       = 3 * time.Second
	minFlushWait        = 10 * time.Millisecond
	headlessCols        = 120
	headlessRows        = 40
)

var (
	ErrFrameTimeout   = errors.New("timeout waiting for bubbletea frame")
	ErrProgramExited  = errors.New("bubbletea program exited")
	ErrStartupTimeout = errors.New("timeout waiting for bubbletea startup")
)

type Options struct {
	Out io.Writer
	// Interactive reads keys from the terminal. Otherwise input is
	// disabled and the program is driven only by a bench.Runner.
	Interactive  bool
	FPS          int
	FrameTimeout time.Duration
	// StartupTimeout bounds how long Start waits for the event loop.
	StartupTimeout time.Duration
	Logger         *slog.Logger
}

type Surface struct {
	model   *Model
	program *tea.Program
	writer  *view.MeasuringWriter
	logger  *slog.Logger

	interactive    bool
	frameTimeout   time.Duration
	startupTimeout time.Duration
	flushWait      time.Duration

	frames atomic.Int64

	exited  chan struct{}
	exitErr error
}

func New(opts Options) *Surface {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	frameTimeout := opts.FrameTimeout
	if frameTimeout <= 0 {
		frameTimeout = defaultFrameTimeout
	}
	startupTimeout := opts.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = defaultStartupTimeout
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	flushWait := 2 * time.Second / time.Duration(fps)
	if flushWait < minFlushWait {
		flushWait = minFlushWait
	}

	writer := view.NewMeasuringWriter(opts.Out)
	model := newModel()
	progOpts := []tea.ProgramOption{
		tea.WithOutput(writer),
		tea.WithFPS(fps),
		tea.WithAltScreen(),
	}
	if !opts.Interactive {
		progOpts = append(progOpts, tea.WithInput(nil), tea.WithoutSignalHandler())
	}

	return &Surface{
		model:          model,
		program:        tea.NewProgram(model, progOpts...),
		writer:         writer,
		logger:         logger.With("frontend", Name),
		interactive:    opts.Interactive,
		frameTimeout:   frameTimeout,
		startupTimeout: startupTimeout,
		flushWait:      flushWait,
		exited:         make(chan struct{}),
	}
}

// Bind attaches the runner the keyboard drives and the sink that receives
// run-all reports. It must be called before Start.
func (s *Surface) Bind(ctx context.Context, r *bench.Runner, sink report.Sink) {
	s.model.ctx = ctx
	s.model.runner = r
	s.model.sink = sink
}

// Start runs the program and waits until its event loop is up.
func (s *Surface) Start() error {
	ready := s.model.ready
	go func() {
		_, err := s.program.Run()
		s.exitErr = err
		close(s.exited)
	}()

	select {
	case <-ready:
		if !s.interactive {
			s.program.Send(tea.WindowSizeMsg{Width: headlessCols, Height: headlessRows})
		}
		s.logger.Debug("bubbletea program started", "interactive", s.interactive)
		return nil
	case <-s.exited:
		if s.exitErr != nil {
			return s.exitErr
		}
		return errors.New("bubbletea exited before initialization")
	case <-time.After(s.startupTimeout):
		return fmt.Errorf("%w after %s", ErrStartupTimeout, s.startupTimeout)
	}
}

// Wait blocks until the program exits, e.g. after the user quits.
func (s *Surface) Wait() error {
	<-s.exited
	return s.exitErr
}

func (s *Surface) Close() error {
	select {
	case <-s.exited:
		return s.exitErr
	default:
	}
	s.program.Send(tea.Quit())
	select {
	case <-s.exited:
		return s.exitErr
	case <-time.After(shutdownTimeout):
		s.program.Kill()
		return errors.New("timeout shutting down bubbletea")
	}
}

// BytesWritten reports how much terminal output the program produced.
func (s *Surface) BytesWritten() int64 {
	n, _ := s.writer.Snapshot()
	return n
}

// Frames counts acknowledged frame requests.
func (s *Surface) Frames() int64 {
	return s.frames.Load()
}

func (s *Surface) PublishTasks(tasks todo.List) {
	s.program.Send(tasksMsg{tasks: tasks})
}

func (s *Surface) PublishResults(samples []bench.Sample) {
	s.program.Send(resultsMsg{samples: samples})
}

// NextFrame round-trips a frame request through the event loop: the request
// is queued behind any pending state change, View acknowledges it, and then
// the renderer's next write is awaited.
func (s *Surface) NextFrame(ctx context.Context) error {
	select {
	case <-s.exited:
		return ErrProgramExited
	default:
	}

	ack := make(chan struct{})
	_, writeBase := s.writer.Snapshot()
	s.program.Send(frameMsg{ack: ack})

	timeout := time.NewTimer(s.frameTimeout)
	defer timeout.Stop()

	select {
	case <-ack:
		s.frames.Add(1)
		if !s.writer.WaitWriteAfter(writeBase, s.flushWait) {
			s.logger.Debug("frame acknowledged without a terminal write")
		}
		return nil
	case <-s.exited:
		return ErrProgramExited
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return fmt.Errorf("%w after %s", ErrFrameTimeout, s.frameTimeout)
	}
}
