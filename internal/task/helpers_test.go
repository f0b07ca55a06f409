package task

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingRunner records every command and answers through respond.
// Without respond every command succeeds.
type recordingRunner struct {
	mu      sync.Mutex
	calls   []execution.Command
	respond func(execution.Command) (execution.Result, error)
}

func (r *recordingRunner) Run(_ context.Context, c execution.Command) (execution.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.respond == nil {
		return execution.Result{Success: true}, nil
	}
	return r.respond(c)
}

func (r *recordingRunner) commandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.calls))
	for i, c := range r.calls {
		lines[i] = c.String()
	}
	return lines
}

func (r *recordingRunner) count(program string, lastArg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Program == program && len(c.Args) > 0 && c.Args[len(c.Args)-1] == lastArg {
			n++
		}
	}
	return n
}

// failWith emulates a must-succeed failure the way the process runner reports it.
func failWith(c execution.Command, code int) (execution.Result, error) {
	res := execution.Result{ExitCode: code, Stderr: "failed"}
	if c.MustSucceed {
		return res, &execution.FailureError{Command: c, ExitCode: code, Stderr: res.Stderr}
	}
	return res, nil
}

func isPing(c execution.Command) bool { return c.Program == "ping" }

func lastArg(c execution.Command) string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

func newTestServer(runner execution.Runner) *server.SSHServer {
	return server.NewSSHServer("nas.lan", server.SSHSettings{User: "admin"}, "", runner)
}

type fakeSender struct {
	sent []net.HardwareAddr
	err  error
}

func (s *fakeSender) Wake(_ context.Context, mac net.HardwareAddr) error {
	s.sent = append(s.sent, mac)
	return s.err
}

type fakePinger struct {
	reachable   []liveness.Deadline
	unreachable []liveness.Deadline
	onReachable func(liveness.Deadline) error
	onDown      func(liveness.Deadline) error
}

func (p *fakePinger) WaitUntilReachable(_ context.Context, _ string, d liveness.Deadline) error {
	p.reachable = append(p.reachable, d)
	if p.onReachable != nil {
		return p.onReachable(d)
	}
	return nil
}

func (p *fakePinger) WaitUntilUnreachable(_ context.Context, _ string, d liveness.Deadline) error {
	p.unreachable = append(p.unreachable, d)
	if p.onDown != nil {
		return p.onDown(d)
	}
	return nil
}

type fakeSessions struct {
	deadlines []liveness.Deadline
	err       error
}

func (s *fakeSessions) WaitUntilReady(_ context.Context, _ server.Server, d liveness.Deadline) error {
	s.deadlines = append(s.deadlines, d)
	return s.err
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func containsLine(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}
