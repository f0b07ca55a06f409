package task

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/execution"
	"github.com/tpodg/wakenrun/internal/server"
)

const StageInstructions = "instructions"

// InstructionRunner executes instructions in declaration order and stops at
// the first failure. Nothing is retried or rolled back.
type InstructionRunner struct {
	runner  execution.Runner
	shell   string
	workDir string
	logger  *slog.Logger
}

func NewInstructionRunner(runner execution.Runner, shell, workDir string, logger *slog.Logger) *InstructionRunner {
	if shell == "" {
		shell = config.DefaultLocalShell
	}
	return &InstructionRunner{
		runner:  runner,
		shell:   shell,
		workDir: workDir,
		logger:  logger,
	}
}

func (r *InstructionRunner) RunAll(ctx context.Context, s server.Server, instructions []config.Instruction) error {
	for i, in := range instructions {
		cmd := r.command(s, in)
		r.logger.Info("Running instruction", "index", i+1, "total", len(instructions), "side", in.ExecutionSide, "command", cmd.String())

		if _, err := r.runner.Run(ctx, cmd); err != nil {
			return instructionError(i, in, cmd, err)
		}
	}
	return nil
}

// command builds the process invocation for an instruction. Local commands
// go to the local shell as one argument, args are used as given and remote
// commands are wrapped by the server.
func (r *InstructionRunner) command(s server.Server, in config.Instruction) execution.Command {
	var cmd execution.Command
	switch {
	case in.ExecutionSide == config.SideRemote:
		cmd = s.Command(in.Command)
	case len(in.Args) > 0:
		cmd = execution.Command{Program: in.Args[0], Args: in.Args[1:], Dir: r.workDir}
	default:
		cmd = execution.Command{Program: r.shell, Args: []string{"-c", in.Command}, Dir: r.workDir}
	}
	cmd.MustSucceed = true
	cmd.Stream = true
	return cmd
}

func instructionError(i int, in config.Instruction, cmd execution.Command, err error) error {
	ie := &InstructionError{
		Index:    i,
		Side:     in.ExecutionSide,
		Command:  in.Command,
		ExitCode: -1,
		Err:      err,
	}
	if in.Command == "" {
		ie.Command = cmd.String()
	}
	var failure *execution.FailureError
	if errors.As(err, &failure) {
		ie.ExitCode = failure.ExitCode
	}
	return ie
}

// InstructionStage runs the task's instruction list.
type InstructionStage struct {
	instructions []config.Instruction
	runner       *InstructionRunner
}

func NewInstructionStage(instructions []config.Instruction, runner *InstructionRunner) *InstructionStage {
	return &InstructionStage{instructions: instructions, runner: runner}
}

func (st *InstructionStage) Name() string { return StageInstructions }

func (st *InstructionStage) NeedsExecution(context.Context, server.Server) (bool, error) {
	return len(st.instructions) > 0, nil
}

func (st *InstructionStage) Execute(ctx context.Context, s server.Server) error {
	return st.runner.RunAll(ctx, s, st.instructions)
}
