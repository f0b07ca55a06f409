package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/strutil"
)

const StageShutdown = "shutdown"

// ShutdownStage powers the host off and optionally waits until it stops answering.
type ShutdownStage struct {
	cfg    config.ShutdownConfig
	pinger ReachabilityChecker
	now    clock
	logger *slog.Logger
}

func NewShutdownStage(cfg config.ShutdownConfig, pinger ReachabilityChecker, logger *slog.Logger) *ShutdownStage {
	return &ShutdownStage{
		cfg:    cfg,
		pinger: pinger,
		now:    time.Now,
		logger: logger,
	}
}

func (st *ShutdownStage) Name() string { return StageShutdown }

func (st *ShutdownStage) NeedsExecution(context.Context, server.Server) (bool, error) {
	return st.cfg.ShutdownRemote, nil
}

// Execute runs the shutdown command exactly once. Its exit status is only
// logged: the connection usually drops while the host goes down.
func (st *ShutdownStage) Execute(ctx context.Context, s server.Server) error {
	st.logger.Info("Shutting down host", "host", s.Address(), "command", st.cfg.ShutdownCmd)

	res, err := s.Execute(ctx, st.cfg.ShutdownCmd, server.ExecOptions{Stream: true})
	if err != nil {
		return fmt.Errorf("failed to run shutdown command: %w", err)
	}
	if !res.Success {
		st.logger.Warn("Shutdown command exited with non-zero status",
			"host", s.Address(),
			"exit_code", res.ExitCode,
			"stderr", strutil.LastLine(res.Stderr))
	}

	if !st.cfg.ValidateShutdown {
		return nil
	}

	d := st.now.deadline(st.cfg.Timeout())
	err = st.pinger.WaitUntilUnreachable(ctx, s.Address(), d)
	var timeout *liveness.TimeoutError
	if errors.As(err, &timeout) {
		return &ShutdownTimeoutError{Err: timeout}
	}
	return err
}
