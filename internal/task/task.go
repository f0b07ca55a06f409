package task

import (
	"context"
	"time"

	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
)

// Stage is one phase of a run against a host.
type Stage interface {
	// Name returns a human-readable name for the stage.
	Name() string
	// NeedsExecution reports whether the stage has any work to do.
	// A stage that returns false performs no I/O at all.
	NeedsExecution(ctx context.Context, s server.Server) (bool, error)
	// Execute performs the stage against the server.
	Execute(ctx context.Context, s server.Server) error
}

// ReachabilityChecker waits for a host to answer, or to stop answering, ping.
type ReachabilityChecker interface {
	WaitUntilReachable(ctx context.Context, host string, d liveness.Deadline) error
	WaitUntilUnreachable(ctx context.Context, host string, d liveness.Deadline) error
}

// SessionChecker waits until a remote session can be opened on the server.
type SessionChecker interface {
	WaitUntilReady(ctx context.Context, s server.Server, d liveness.Deadline) error
}

type clock func() time.Time

func (c clock) deadline(timeout time.Duration) liveness.Deadline {
	return liveness.StartDeadlineAt(c, timeout)
}
