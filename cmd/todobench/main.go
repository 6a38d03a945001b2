package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/config"
	"github.com/rezi-ui/bench/todo-bench/internal/report"
	"github.com/rezi-ui/bench/todo-bench/internal/settle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		emit(context.Background(), report.NewWriterSink(os.Stdout), report.ErrorEnvelope(err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var primary report.Sink = report.NewWriterSink(os.Stdout)
	if cfg.ResultPath != "" {
		primary = report.FileSink{Path: cfg.ResultPath}
	}

	env := run(ctx, cfg, logger)
	emit(ctx, primary, env)
	stop()
	if !env.OK {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) report.Envelope {
	stopMetrics := serveMetrics(cfg.MetricsAddr, logger)
	defer stopMetrics()

	extra, closeSinks, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return report.ErrorEnvelope(err)
	}
	defer closeSinks()

	fe, err := openFrontend(cfg, logger)
	if err != nil {
		return report.ErrorEnvelope(err)
	}

	var frames settle.FrameSource = fe
	if cfg.Frames == config.FramesNone {
		frames = nil
	}
	timer := settle.NewTimer(frames,
		settle.WithLogger(logger),
		settle.WithStrict(cfg.StrictFrames),
	)
	runner := bench.NewRunner(timer, fe,
		bench.WithFrontend(fe.name),
		bench.WithSettleDelay(cfg.SettleDelay),
		bench.WithLogger(logger),
	)

	meter := report.StartMeter()
	rep, err := execute(ctx, cfg, fe, runner, extra)
	if closeErr := fe.close(); closeErr != nil {
		logger.Warn("failed to close front-end", "error", closeErr)
	}

	env := report.NewEnvelope(rep, err)
	frameCount, written := fe.stats()
	env.Resources = meter.Finish(written, frameCount)

	// Interactive run-all reports reach the sinks from the TUI itself.
	if cfg.Mode != config.ModeInteractive && len(extra) > 0 {
		if err := extra.Emit(ctx, env); err != nil {
			logger.Warn("failed to deliver report", "error", err)
		}
	}
	return env
}

func execute(ctx context.Context, cfg config.Config, fe *frontend, runner *bench.Runner, sinks report.Multi) (bench.Report, error) {
	if cfg.Mode == config.ModeRunAll {
		return runner.RunAll(ctx)
	}

	rep := bench.Report{Frontend: runner.Frontend()}
	var err error
	switch cfg.Mode {
	case config.ModeRender:
		_, err = runner.Render(ctx, cfg.Count)
	case config.ModeUpdate:
		_, err = runner.Update50(ctx)
	case config.ModeDelete:
		_, err = runner.Delete50(ctx)
	case config.ModeInteractive:
		err = fe.interact(ctx, runner, sinks)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	rep.Samples = runner.Results()
	return rep, err
}

func emit(ctx context.Context, sink report.Sink, env report.Envelope) {
	if err := sink.Emit(ctx, env); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func openSinks(ctx context.Context, cfg config.Config, logger *slog.Logger) (report.Multi, func(), error) {
	var (
		sinks   report.Multi
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close report sink", "error", err)
			}
		}
	}

	if cfg.RedisAddr != "" {
		rs, err := report.NewRedisSink(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, rs)
		closers = append(closers, rs.Close)
	}

	if cfg.PostgresDSN != "" {
		ps, err := report.NewPostgresSink(ctx, cfg.PostgresDSN)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, ps.Close)
		if err := ps.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, ps)
	}

	return sinks, closeAll, nil
}
