// Package config resolves todobench settings from TODOBENCH_* environment
// variables and --key value command-line arguments, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FrontendHeadless = "headless"
	FrontendTUI      = "tui"

	// FramesVsync times against the front-end's painted frames. FramesNone
	// times without a frame source, which degrades to fixed delays or, with
	// StrictFrames, fails.
	FramesVsync = "vsync"
	FramesNone  = "none"

	ModeRunAll      = "run-all"
	ModeRender      = "render"
	ModeUpdate      = "update"
	ModeDelete      = "delete"
	ModeInteractive = "interactive"
)

type Config struct {
	Frontend     string
	Mode         string
	Count        int
	SettleDelay  time.Duration
	FPS          int
	FrameTimeout time.Duration
	Frames       string
	StrictFrames bool
	ResultPath   string
	RedisAddr    string
	PostgresDSN  string
	MetricsAddr  string
	LogLevel     slog.Level
}

func Default() Config {
	return Config{
		Frontend:     FrontendHeadless,
		Mode:         ModeRunAll,
		Count:        1000,
		SettleDelay:  100 * time.Millisecond,
		FPS:          60,
		FrameTimeout: 3 * time.Second,
		Frames:       FramesVsync,
		LogLevel:     slog.LevelInfo,
	}
}

// FromEnv overlays the TODOBENCH_* variables onto base. getenv is
// os.Getenv outside tests.
func FromEnv(base Config, getenv func(string) string) (Config, error) {
	cfg := base
	if v := getenv("TODOBENCH_FRONTEND"); v != "" {
		cfg.Frontend = v
	}
	if v := getenv("TODOBENCH_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := getenv("TODOBENCH_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getenv("TODOBENCH_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := getenv("TODOBENCH_LOG_LEVEL"); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid TODOBENCH_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// Parse applies argv (including the program name at index 0) onto base and
// validates the result.
func Parse(argv []string, base Config) (Config, error) {
	out := base

	for i := 1; i < len(argv); i++ {
		arg := argv[i]
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		key := strings.TrimPrefix(arg, "--")
		if i+1 >= len(argv) {
			return out, fmt.Errorf("missing value for %s", arg)
		}
		value := argv[i+1]
		i++

		switch key {
		case "frontend":
			out.Frontend = value
		case "mode":
			out.Mode = value
		case "count":
			n, err := strconv.Atoi(value)
			if err != nil {
				return out, fmt.Errorf("invalid --count: %w", err)
			}
			out.Count = n
		case "settle-ms":
			n, err := strconv.Atoi(value)
			if err != nil {
				return out, fmt.Errorf("invalid --settle-ms: %w", err)
			}
			out.SettleDelay = time.Duration(n) * time.Millisecond
		case "fps":
			n, err := strconv.Atoi(value)
			if err != nil {
				return out, fmt.Errorf("invalid --fps: %w", err)
			}
			out.FPS = n
		case "frame-timeout-ms":
			n, err := strconv.Atoi(value)
			if err != nil {
				return out, fmt.Errorf("invalid --frame-timeout-ms: %w", err)
			}
			out.FrameTimeout = time.Duration(n) * time.Millisecond
		case "frames":
			out.Frames = value
		case "strict-frames":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return out, fmt.Errorf("invalid --strict-frames: %w", err)
			}
			out.StrictFrames = b
		case "result-path":
			out.ResultPath = value
		case "redis-addr":
			out.RedisAddr = value
		case "postgres-dsn":
			out.PostgresDSN = value
		case "metrics-addr":
			out.MetricsAddr = value
		case "log-level":
			level, err := parseLevel(value)
			if err != nil {
				return out, fmt.Errorf("invalid --log-level: %w", err)
			}
			out.LogLevel = level
		default:
			return out, fmt.Errorf("unknown flag %s", arg)
		}
	}

	return out, out.Validate()
}

func (c Config) Validate() error {
	switch c.Frontend {
	case FrontendHeadless, FrontendTUI:
	default:
		return fmt.Errorf("unknown --frontend %q", c.Frontend)
	}
	switch c.Mode {
	case ModeRunAll, ModeRender, ModeUpdate, ModeDelete:
	case ModeInteractive:
		if c.Frontend != FrontendTUI {
			return errors.New("--mode interactive requires --frontend tui")
		}
	default:
		return fmt.Errorf("unknown --mode %q", c.Mode)
	}
	switch c.Frames {
	case FramesVsync, FramesNone:
	default:
		return fmt.Errorf("unknown --frames %q", c.Frames)
	}
	if c.Count < 0 {
		return errors.New("--count must be >= 0")
	}
	if c.SettleDelay < 0 {
		return errors.New("--settle-ms must be >= 0")
	}
	if c.FPS <= 0 {
		return errors.New("--fps must be > 0")
	}
	if c.FrameTimeout <= 0 {
		return errors.New("--frame-timeout-ms must be > 0")
	}
	return nil
}

// Load reads the process environment and then os.Args.
func Load() (Config, error) {
	cfg, err := FromEnv(Default(), os.Getenv)
	if err != nil {
		return cfg, err
	}
	return Parse(os.Args, cfg)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
