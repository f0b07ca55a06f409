package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tpodg/wakenrun/internal/app"
	"github.com/tpodg/wakenrun/internal/config"
)

type contextKey string

const appKey contextKey = "app"

var (
	logFormat string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "wakenrun",
	Short: "Wakenrun wakes a host, runs instructions on it and shuts it down again",
	Long: `Wakenrun sends a Wake-on-LAN packet to a sleeping machine, waits until it
answers ping and ssh, runs a list of local and remote commands and finally
powers the machine off and confirms it went offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on any fatal error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format, text or json")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadApp loads the task file named by the first argument, or found in the
// default locations, and attaches the resulting App to the command context.
func loadApp(cmd *cobra.Command, args []string) error {
	var cfgFile string
	if len(args) > 0 {
		cfgFile = args[0]
	}

	t, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	a, err := app.New(t, app.LogOptions{Format: logFormat, Debug: debug, Output: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), appKey, a)
	cmd.SetContext(ctx)
	return nil
}

func getApp(cmd *cobra.Command) *app.App {
	if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
		return a
	}
	return nil
}

func taskFileUsage() string {
	return fmt.Sprintf("FILE defaults to $HOME/%s, then ./%s.", config.DefaultConfigFileName, config.DefaultConfigFileName)
}
