package cli

import (
	"fmt"

	"github.com/goforj/godump"
	"github.com/spf13/cobra"
)

var validateDump bool

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check a task file without touching any host",
	Long: `Load and validate the task, with defaults and WAKENRUN_* environment
overrides applied. Override names follow the Go field path in upper case,
for example WAKENRUN_HOST or WAKENRUN_SHUTDOWN_SHUTDOWNCMD. Nothing is sent
to the network.

` + taskFileUsage(),
	Args:    cobra.MaximumNArgs(1),
	PreRunE: loadApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		if validateDump {
			fmt.Fprintln(cmd.OutOrStdout(), godump.DumpStr(a.Task))
		}
		a.Logger.Info("Task is valid",
			"wake", a.Task.Wake.Enabled,
			"instructions", len(a.Task.Instructions),
			"shutdown", a.Task.Shutdown.ShutdownRemote)
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "print the resolved task")
	rootCmd.AddCommand(validateCmd)
}
