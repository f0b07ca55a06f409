package execution

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/wakenrun/internal/strutil"
)

// Command describes one process invocation.
type Command struct {
	Program string
	Args    []string
	// Dir is the working directory. Empty means the invoking user's home directory.
	Dir string
	// MustSucceed turns a non-zero exit into a *FailureError.
	MustSucceed bool
	// Stream emits every output line to the log as it is produced.
	Stream bool
	// UsePTY attaches the process to a pseudo-terminal. Stdout and stderr are merged into Result.Stdout.
	UsePTY bool
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	return strutil.JoinArgs(c.Program, c.Args)
}

// Result describes the outcome of a finished process.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs processes to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// FailureError is returned for a must-succeed command that exited non-zero.
type FailureError struct {
	Command  Command
	ExitCode int
	Stderr   string
}

func (e *FailureError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command.String(), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + strutil.LastLine(stderr)
	}
	return msg
}
