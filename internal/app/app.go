package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/tpodg/wakenrun/internal/config"
)

// LogOptions selects how the process logs.
type LogOptions struct {
	// Format is "text" (default) or "json".
	Format string
	Debug  bool
	// Output defaults to stdout.
	Output io.Writer
}

type App struct {
	Logger *slog.Logger
	Task   *config.Task
	RunID  string
}

// New builds the App for one run. Every record logged through it carries
// the run id and the target host.
func New(task *config.Task, opts LogOptions) (*App, error) {
	logger, err := NewLogger(opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &App{
		Logger: logger.With("run_id", runID, "host", task.Host),
		Task:   task,
		RunID:  runID,
	}, nil
}

func NewLogger(opts LogOptions) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch opts.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q, expected text or json", opts.Format)
	}
}
