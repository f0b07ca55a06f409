package cli

import (
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [FILE]",
	Short: "Write a sample task file",
	Long:  `Write a sample task with one local and one remote instruction. An existing file is never overwritten.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  writeSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
