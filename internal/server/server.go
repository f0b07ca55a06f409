package server

import (
	"context"

	"github.com/tpodg/wakenrun/internal/execution"
)

// Server represents a remote host commands can be sent to.
type Server interface {
	// Address returns the connection address (IP or hostname).
	Address() string
	// Command returns the local process invocation that runs command on the server.
	Command(command string) execution.Command
	// Execute runs a command on the server.
	Execute(ctx context.Context, command string, opts ExecOptions) (execution.Result, error)
}

// ExecOptions controls how a remote command is run.
type ExecOptions struct {
	// MustSucceed turns a non-zero exit of the remote command into an error.
	MustSucceed bool
	// Stream logs the command output line by line while it runs.
	Stream bool
}
