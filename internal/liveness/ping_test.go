package liveness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/wakenrun/internal/execution"
)

func TestPingArgs(t *testing.T) {
	assert.Equal(t, []string{"-c", "3", "-W", "2", "nas.lan"}, PingArgs("nas.lan"))
}

func TestPinger_WaitUntilReachable(t *testing.T) {
	runner := &scriptedRunner{results: []execution.Result{fail(), fail(), ok()}}
	p := NewPinger(runner, "", 0, discardLogger())

	err := p.WaitUntilReachable(context.Background(), "nas.lan", StartDeadline(time.Minute))
	require.NoError(t, err)
	require.Len(t, runner.calls, 3)
	assert.Equal(t, "ping -c 3 -W 2 nas.lan", runner.calls[0].String())
	assert.False(t, runner.calls[0].MustSucceed)
}

func TestPinger_WaitUntilUnreachable(t *testing.T) {
	runner := &scriptedRunner{results: []execution.Result{ok(), ok(), fail()}}
	p := NewPinger(runner, "", 0, discardLogger())

	err := p.WaitUntilUnreachable(context.Background(), "nas.lan", StartDeadline(time.Minute))
	require.NoError(t, err)
	assert.Len(t, runner.calls, 3)
}

func TestPinger_Timeout(t *testing.T) {
	tests := []struct {
		name   string
		result execution.Result
		wait   func(*Pinger, context.Context, string, Deadline) error
		kind   Kind
	}{
		{"never answers", fail(), (*Pinger).WaitUntilReachable, KindReachable},
		{"never goes down", ok(), (*Pinger).WaitUntilUnreachable, KindUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			runner := &scriptedRunner{
				results: []execution.Result{tt.result},
				onRun:   func() { clock.Advance(4 * time.Second) },
			}
			p := NewPinger(runner, "/usr/bin/ping", 0, discardLogger())

			err := tt.wait(p, context.Background(), "nas.lan", StartDeadlineAt(clock.Now, 10*time.Second))
			var timeout *TimeoutError
			require.ErrorAs(t, err, &timeout)
			assert.Equal(t, tt.kind, timeout.Kind)
			assert.Equal(t, "nas.lan", timeout.Host)
			assert.Equal(t, 3, timeout.Attempts)
			assert.Equal(t, "/usr/bin/ping -c 3 -W 2 nas.lan", timeout.LastCommand)
		})
	}
}

func TestPinger_StartFailureIsNotRetried(t *testing.T) {
	runner := &scriptedRunner{err: errors.New("failed to start \"ping\": not found")}
	p := NewPinger(runner, "", 0, discardLogger())

	err := p.WaitUntilReachable(context.Background(), "nas.lan", StartDeadline(time.Minute))
	require.Error(t, err)
	var timeout *TimeoutError
	assert.False(t, errors.As(err, &timeout))
	assert.Len(t, runner.calls, 1)
}
