package task

import (
	"context"
	"log/slog"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/wol"
)

// Options are per-run operator overrides.
type Options struct {
	SkipWake     bool
	SkipShutdown bool
}

// Orchestrator drives one task through wake, instructions and shutdown.
type Orchestrator struct {
	task    *config.Task
	runner  execution.Runner
	sender  wol.Sender
	options Options
	logger  *slog.Logger
}

func NewOrchestrator(t *config.Task, runner execution.Runner, sender wol.Sender, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		task:    t,
		runner:  runner,
		sender:  sender,
		options: opts,
		logger:  logger,
	}
}

// Run checks the task, then executes its stages strictly in sequence.
// The first fatal error aborts the run and later stages never start.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	settings, workDir, err := o.preflight()
	if err != nil {
		return Summary{}, err
	}

	t := o.task
	srv := server.NewSSHServer(t.Host, settings, workDir, o.runner)
	pinger := liveness.NewPinger(o.runner, t.PingCmd, t.PollInterval(), o.logger)
	sessions := liveness.NewSessionChecker(t.SessionCheckCmd, t.PollInterval(), o.logger)

	wake := t.Wake
	wake.Enabled = wake.Enabled && !o.options.SkipWake
	shutdown := t.Shutdown
	shutdown.ShutdownRemote = shutdown.ShutdownRemote && !o.options.SkipShutdown

	stages := []Stage{
		NewWakeStage(wake, o.sender, pinger, sessions, o.logger),
		NewInstructionStage(t.Instructions, NewInstructionRunner(o.runner, t.LocalShell, workDir, o.logger)),
		NewShutdownStage(shutdown, pinger, o.logger),
	}

	summary, err := NewRunner(o.logger).Run(ctx, srv, stages...)
	o.logSummary(summary, err)
	return summary, err
}

// preflight rejects configuration problems before any side effect and
// resolves the paths the stages need.
func (o *Orchestrator) preflight() (server.SSHSettings, string, error) {
	t := o.task

	if t.Wake.Enabled && !o.options.SkipWake {
		if _, err := wol.ParseMAC(t.Wake.MAC); err != nil {
			return server.SSHSettings{}, "", &config.Error{Field: "wakeup_instructions.mac", Err: err}
		}
	}

	return ResolveSSH(t)
}

func (o *Orchestrator) logSummary(summary Summary, err error) {
	attrs := []any{"elapsed", summary.Elapsed, "success", err == nil}
	for _, st := range summary.Stages {
		if st.Executed {
			attrs = append(attrs, slog.Duration(st.Name, st.Elapsed))
		} else {
			attrs = append(attrs, slog.String(st.Name, "skipped"))
		}
	}
	o.logger.Info("Run finished", attrs...)
}
