package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/task"
	"github.com/tpodg/wakenrun/internal/wol"
)

var (
	runSample       bool
	runSkipWake     bool
	runSkipShutdown bool
)

var runCmd = &cobra.Command{
	Use:   "run [FILE]",
	Short: "Run a task: wake, instructions, shutdown",
	Long: `Run the task described by FILE. The host is woken, the instructions run in
order and the host is shut down, each stage as configured. The first failure
aborts the run. With --sample a sample task is written to FILE instead.

` + taskFileUsage(),
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if runSample {
			return nil
		}
		return loadApp(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if runSample {
			return writeSample(cmd, args)
		}

		a := getApp(cmd)
		a.Logger.Info("Starting run", "instructions", len(a.Task.Instructions))

		o := task.NewOrchestrator(
			a.Task,
			execution.NewProcessRunner(a.Logger),
			wol.UDPSender{Addr: a.Task.Wake.Broadcast},
			task.Options{SkipWake: runSkipWake, SkipShutdown: runSkipShutdown},
			a.Logger,
		)
		_, err := o.Run(cmd.Context())
		return err
	},
}

func writeSample(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigFileName
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sample task written to %s\n", path)
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runSample, "sample", false, "write a sample task to FILE and exit")
	runCmd.Flags().BoolVar(&runSkipWake, "skip-wake", false, "skip the wake stage for this run")
	runCmd.Flags().BoolVar(&runSkipShutdown, "skip-shutdown", false, "skip the shutdown stage for this run")
	rootCmd.AddCommand(runCmd)
}
