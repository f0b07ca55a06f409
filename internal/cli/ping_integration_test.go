//go:build integration

package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/testutils"
)

func TestVerifyHost_Integration(t *testing.T) {
	if _, err := exec.LookPath(server.DefaultSSHProgram); err != nil {
		t.Skip("ssh client not installed")
	}

	ctx := context.Background()
	sshC := testutils.SetupSSHContainer(t, ctx)

	// Wait a bit for the SSH server to be fully ready
	time.Sleep(2 * time.Second)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	runner := execution.NewProcessRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := server.NewSSHServer(sshC.Host, server.SSHSettings{
		IdentityFile: sshC.KeyPath,
		Port:         sshC.Port,
		User:         sshC.User,
		Options:      sshC.ClientOptions(),
	}, t.TempDir(), runner)
	// The container host may drop ICMP; only the ssh half is asserted.
	pinger := liveness.NewPinger(runner, "true", time.Second, logger)

	require.NoError(t, verifyHost(ctx, logger, pinger, srv))

	output := buf.String()
	assert.Contains(t, output, "Verification successful")
	assert.Contains(t, output, "address="+sshC.Host)
}
