package task

import (
	"fmt"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/liveness"
)

// StageError wraps the fatal error that aborted a stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// InstructionError identifies the instruction that aborted the run.
type InstructionError struct {
	// Index is zero-based.
	Index    int
	Side     config.Side
	Command  string
	ExitCode int
	Err      error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction #%d (%s) %q failed: %v", e.Index+1, e.Side, e.Command, e.Err)
}

func (e *InstructionError) Unwrap() error { return e.Err }

// ShutdownTimeoutError means the host kept answering after the shutdown command.
// It only happens once every instruction has succeeded.
type ShutdownTimeoutError struct {
	Err *liveness.TimeoutError
}

func (e *ShutdownTimeoutError) Error() string {
	return "shutdown not confirmed: " + e.Err.Error()
}

func (e *ShutdownTimeoutError) Unwrap() error { return e.Err }
