package liveness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/server"
)

func TestSessionChecker_WaitUntilReady(t *testing.T) {
	runner := &scriptedRunner{results: []execution.Result{
		{ExitCode: 255, Stderr: "Connection refused"},
		{Success: true, Stdout: "admin\n"},
	}}
	srv := server.NewSSHServer("nas.lan", server.SSHSettings{User: "admin"}, "", runner)
	checker := NewSessionChecker("", 0, discardLogger())

	err := checker.WaitUntilReady(context.Background(), srv, StartDeadline(time.Minute))
	require.NoError(t, err)
	require.Len(t, runner.calls, 2)
	assert.Equal(t, "ssh -t admin@nas.lan whoami", runner.calls[1].String())
}

func TestSessionChecker_Timeout(t *testing.T) {
	clock := newFakeClock()
	runner := &scriptedRunner{
		results: []execution.Result{{ExitCode: 255}},
		onRun:   func() { clock.Advance(30 * time.Second) },
	}
	srv := server.NewSSHServer("nas.lan", server.SSHSettings{Port: 2222}, "", runner)
	checker := NewSessionChecker("true", 0, discardLogger())

	err := checker.WaitUntilReady(context.Background(), srv, StartDeadlineAt(clock.Now, time.Minute))
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, KindSession, timeout.Kind)
	assert.Equal(t, 2, timeout.Attempts)
	assert.Equal(t, "ssh -t -p 2222 nas.lan true", timeout.LastCommand)
	assert.Contains(t, err.Error(), "no remote session on nas.lan within 1m0s")
}
