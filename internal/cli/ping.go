package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/liveness"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/task"
)

const verifyTimeout = 15 * time.Second

var pingCmd = &cobra.Command{
	Use:   "ping [FILE]",
	Short: "Verify the connection to an awake host",
	Long: `Ping the configured host once and execute a simple command over ssh to verify
it is reachable with the configured settings. The host is not woken.

` + taskFileUsage(),
	Args:    cobra.MaximumNArgs(1),
	PreRunE: loadApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		a.Logger.Info("Starting connection verification")

		t := a.Task
		settings, workDir, err := task.ResolveSSH(t)
		if err != nil {
			return err
		}

		runner := execution.NewProcessRunner(a.Logger)
		srv := server.NewSSHServer(t.Host, settings, workDir, runner)
		pinger := liveness.NewPinger(runner, t.PingCmd, t.PollInterval(), a.Logger)

		return verifyHost(cmd.Context(), a.Logger, pinger, srv)
	},
}

func verifyHost(ctx context.Context, logger *slog.Logger, pinger *liveness.Pinger, srv server.Server) error {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	logger.Info("Checking host", "address", srv.Address())

	answered, err := pinger.Ping(ctx, srv.Address())
	if err != nil {
		return err
	}
	if !answered {
		logger.Warn("Host did not answer ping", "address", srv.Address())
	}

	res, err := srv.Execute(ctx, "echo pong", server.ExecOptions{MustSucceed: true})
	if err != nil {
		return fmt.Errorf("verification failed for %s: %w", srv.Address(), err)
	}

	if strings.TrimSpace(res.Stdout) == "pong" {
		logger.Info("Verification successful", "address", srv.Address())
	} else {
		logger.Warn("Verification partially successful (unexpected output)", "address", srv.Address(), "output", strings.TrimSpace(res.Stdout))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
