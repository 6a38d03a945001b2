package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/config"
	"github.com/rezi-ui/bench/todo-bench/internal/headless"
	"github.com/rezi-ui/bench/todo-bench/internal/report"
	"github.com/rezi-ui/bench/todo-bench/internal/tui"
)

var errNoTerminal = errors.New("interactive mode needs the tui front-end")

// frontend is whichever surface the runner publishes to and waits on.
type frontend struct {
	bench.Publisher
	frameSource

	name     string
	headless *headless.Surface
	tui      *tui.Surface
}

type frameSource interface {
	NextFrame(ctx context.Context) error
}

func openFrontend(cfg config.Config, logger *slog.Logger) (*frontend, error) {
	if cfg.Frontend == config.FrontendTUI {
		s := tui.New(tui.Options{
			Out:          os.Stdout,
			Interactive:  cfg.Mode == config.ModeInteractive,
			FPS:          cfg.FPS,
			FrameTimeout: cfg.FrameTimeout,
			Logger:       logger,
		})
		fe := &frontend{Publisher: s, frameSource: s, name: tui.Name, tui: s}
		// Interactive sessions start once the runner is bound.
		if cfg.Mode != config.ModeInteractive {
			if err := s.Start(); err != nil {
				return nil, err
			}
		}
		return fe, nil
	}

	s := headless.New(headless.Options{
		Out:    io.Discard,
		FPS:    cfg.FPS,
		Logger: logger,
	})
	s.Start()
	return &frontend{Publisher: s, frameSource: s, name: headless.Name, headless: s}, nil
}

// interact hands the terminal to the user until they quit.
func (f *frontend) interact(ctx context.Context, r *bench.Runner, sinks report.Multi) error {
	if f.tui == nil {
		return errNoTerminal
	}
	f.tui.Bind(ctx, r, sinks)
	if err := f.tui.Start(); err != nil {
		return err
	}
	return f.tui.Wait()
}

func (f *frontend) stats() (frames int64, bytesWritten int64) {
	if f.tui != nil {
		return f.tui.Frames(), f.tui.BytesWritten()
	}
	return f.headless.Stats()
}

func (f *frontend) close() error {
	if f.tui != nil {
		return f.tui.Close()
	}
	f.headless.Stop()
	return nil
}
