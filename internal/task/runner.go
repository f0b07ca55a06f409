package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tpodg/wakenrun/internal/server"
)

// StageReport records how one stage of a run went.
type StageReport struct {
	Name     string
	Executed bool
	Elapsed  time.Duration
}

// Summary lists the stages processed by a run, in order.
type Summary struct {
	Stages  []StageReport
	Elapsed time.Duration
}

// Runner is responsible for executing stages against a server.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new Runner with the given logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Run executes stages in order and stops at the first failure.
// For each stage, it first checks if it needs execution.
func (r *Runner) Run(ctx context.Context, s server.Server, stages ...Stage) (Summary, error) {
	start := time.Now()
	var summary Summary
	finish := func() Summary {
		summary.Elapsed = time.Since(start)
		return summary
	}

	for _, st := range stages {
		name := st.Name()
		r.logger.Info("Processing stage", "stage", name, "server", s.Address())

		needsExec, err := st.NeedsExecution(ctx, s)
		if err != nil {
			return finish(), &StageError{Stage: name, Err: fmt.Errorf("failed to check if stage needs execution: %w", err)}
		}

		if !needsExec {
			r.logger.Info("Stage is disabled, skipping", "stage", name, "server", s.Address())
			summary.Stages = append(summary.Stages, StageReport{Name: name})
			continue
		}

		stageStart := time.Now()
		if err := st.Execute(ctx, s); err != nil {
			summary.Stages = append(summary.Stages, StageReport{Name: name, Executed: true, Elapsed: time.Since(stageStart)})
			return finish(), &StageError{Stage: name, Err: err}
		}

		report := StageReport{Name: name, Executed: true, Elapsed: time.Since(stageStart)}
		summary.Stages = append(summary.Stages, report)
		r.logger.Info("Stage completed", "stage", name, "server", s.Address(), "elapsed", report.Elapsed)
	}

	return finish(), nil
}
