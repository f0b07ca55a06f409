package liveness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tpodg/wakenrun/internal/execution"
)

const (
	DefaultPingProgram = "ping"

	pingCount       = 3
	pingWaitSeconds = 2
)

// PingArgs returns the ping arguments for one bounded attempt against host.
func PingArgs(host string) []string {
	return []string{"-c", strconv.Itoa(pingCount), "-W", strconv.Itoa(pingWaitSeconds), host}
}

// Pinger checks reachability by running an external ping program.
type Pinger struct {
	runner   execution.Runner
	program  string
	interval time.Duration
	logger   *slog.Logger
}

func NewPinger(runner execution.Runner, program string, interval time.Duration, logger *slog.Logger) *Pinger {
	if program == "" {
		program = DefaultPingProgram
	}
	return &Pinger{
		runner:   runner,
		program:  program,
		interval: interval,
		logger:   logger,
	}
}

// Command returns the process invocation for one attempt against host.
func (p *Pinger) Command(host string) execution.Command {
	return execution.Command{Program: p.program, Args: PingArgs(host)}
}

// Ping runs a single attempt and reports whether host answered.
func (p *Pinger) Ping(ctx context.Context, host string) (bool, error) {
	res, err := p.runner.Run(ctx, p.Command(host))
	if err != nil {
		return false, fmt.Errorf("ping %s: %w", host, err)
	}
	return res.Success, nil
}

// WaitUntilReachable polls until host answers or d expires.
func (p *Pinger) WaitUntilReachable(ctx context.Context, host string, d Deadline) error {
	return p.wait(ctx, host, d, KindReachable)
}

// WaitUntilUnreachable polls until host stops answering or d expires.
func (p *Pinger) WaitUntilUnreachable(ctx context.Context, host string, d Deadline) error {
	return p.wait(ctx, host, d, KindUnreachable)
}

func (p *Pinger) wait(ctx context.Context, host string, d Deadline, kind Kind) error {
	wantAnswer := kind == KindReachable
	p.logger.Info("Waiting for host", "host", host, "condition", kind, "timeout", d.Timeout())

	attempt := 0
	attempts, err := Until(ctx, d, p.interval, func(ctx context.Context) (bool, error) {
		attempt++
		answered, err := p.Ping(ctx, host)
		if err != nil {
			return false, err
		}
		p.logger.Debug("Ping attempt finished", "host", host, "attempt", attempt, "answered", answered, "elapsed", d.Elapsed(), "next_delay", p.interval)
		return answered == wantAnswer, nil
	})
	if errors.Is(err, ErrDeadlineExceeded) {
		return &TimeoutError{
			Kind:        kind,
			Host:        host,
			Timeout:     d.Timeout(),
			Attempts:    attempts,
			LastCommand: p.Command(host).String(),
		}
	}
	if err != nil {
		return err
	}

	p.logger.Info("Host condition met", "host", host, "condition", kind, "attempts", attempts, "elapsed", d.Elapsed())
	return nil
}
