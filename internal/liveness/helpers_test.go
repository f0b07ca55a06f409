package liveness

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tpodg/wakenrun/internal/execution"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedRunner answers each Run with the next scripted result and repeats
// the last one once the script runs out.
type scriptedRunner struct {
	results []execution.Result
	err     error
	onRun   func()
	calls   []execution.Command
}

func (r *scriptedRunner) Run(_ context.Context, c execution.Command) (execution.Result, error) {
	r.calls = append(r.calls, c)
	if r.onRun != nil {
		r.onRun()
	}
	if r.err != nil {
		return execution.Result{ExitCode: -1}, r.err
	}
	i := len(r.calls) - 1
	if i >= len(r.results) {
		i = len(r.results) - 1
	}
	return r.results[i], nil
}

func ok() execution.Result   { return execution.Result{Success: true} }
func fail() execution.Result { return execution.Result{ExitCode: 1} }
