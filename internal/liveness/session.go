package liveness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/server"
)

const DefaultSessionCommand = "whoami"

// SessionChecker waits until a trivial remote command succeeds.
type SessionChecker struct {
	command  string
	interval time.Duration
	logger   *slog.Logger
}

func NewSessionChecker(command string, interval time.Duration, logger *slog.Logger) *SessionChecker {
	if command == "" {
		command = DefaultSessionCommand
	}
	return &SessionChecker{
		command:  command,
		interval: interval,
		logger:   logger,
	}
}

// WaitUntilReady polls srv until the session command succeeds or d expires.
func (s *SessionChecker) WaitUntilReady(ctx context.Context, srv server.Server, d Deadline) error {
	host := srv.Address()
	s.logger.Info("Waiting for remote session", "host", host, "timeout", d.Timeout())

	var last execution.Command
	attempt := 0
	attempts, err := Until(ctx, d, s.interval, func(ctx context.Context) (bool, error) {
		attempt++
		last = srv.Command(s.command)
		res, err := srv.Execute(ctx, s.command, server.ExecOptions{})
		if err != nil {
			return false, fmt.Errorf("session check on %s: %w", host, err)
		}
		if !res.Success {
			s.logger.Debug("Session attempt failed", "host", host, "attempt", attempt, "next_delay", s.interval, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
			return false, nil
		}
		s.logger.Info("Remote session ready", "host", host, "user", strings.TrimSpace(res.Stdout))
		return true, nil
	})
	if errors.Is(err, ErrDeadlineExceeded) {
		if last.Program == "" {
			last = srv.Command(s.command)
		}
		return &TimeoutError{
			Kind:        KindSession,
			Host:        host,
			Timeout:     d.Timeout(),
			Attempts:    attempts,
			LastCommand: last.String(),
		}
	}
	return err
}
