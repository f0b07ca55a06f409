package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/execution"
)

func TestInstructionRunner_StopsAtFirstFailure(t *testing.T) {
	runner := &recordingRunner{respond: func(c execution.Command) (execution.Result, error) {
		if lastArg(c) == "B" {
			return failWith(c, 3)
		}
		return execution.Result{Success: true}, nil
	}}
	ir := NewInstructionRunner(runner, "", "", discardLogger())

	err := ir.RunAll(context.Background(), newTestServer(runner), []config.Instruction{
		{ExecutionSide: config.SideLocal, Command: "A"},
		{ExecutionSide: config.SideLocal, Command: "B"},
		{ExecutionSide: config.SideLocal, Command: "C"},
	})

	var ie *InstructionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, "B", ie.Command)
	assert.Equal(t, 3, ie.ExitCode)
	assert.Contains(t, err.Error(), `instruction #2 (local) "B" failed`)
	assert.Equal(t, []string{"sh -c A", "sh -c B"}, runner.commandLines())
}

func TestInstructionRunner_Commands(t *testing.T) {
	runner := &recordingRunner{}
	ir := NewInstructionRunner(runner, "bash", "/srv", discardLogger())

	err := ir.RunAll(context.Background(), newTestServer(runner), []config.Instruction{
		{ExecutionSide: config.SideLocal, Command: `echo "a b" | wc -c`},
		{ExecutionSide: config.SideLocal, Args: []string{"rsync", "-a", "dir with space", "nas.lan:/srv"}},
		{ExecutionSide: config.SideRemote, Command: "df -h /"},
	})
	require.NoError(t, err)
	require.Len(t, runner.calls, 3)

	local := runner.calls[0]
	assert.Equal(t, "bash", local.Program)
	assert.Equal(t, []string{"-c", `echo "a b" | wc -c`}, local.Args)
	assert.Equal(t, "/srv", local.Dir)

	args := runner.calls[1]
	assert.Equal(t, "rsync", args.Program)
	assert.Equal(t, []string{"-a", "dir with space", "nas.lan:/srv"}, args.Args)

	remote := runner.calls[2]
	assert.Equal(t, "ssh", remote.Program)
	assert.Equal(t, []string{"-t", "admin@nas.lan", "df -h /"}, remote.Args)

	for _, c := range runner.calls {
		assert.True(t, c.MustSucceed, "%s must succeed", c.String())
		assert.True(t, c.Stream, "%s must stream", c.String())
	}
}

func TestInstructionRunner_StartFailure(t *testing.T) {
	startErr := errors.New(`failed to start "rsync": executable file not found`)
	runner := &recordingRunner{respond: func(execution.Command) (execution.Result, error) {
		return execution.Result{ExitCode: -1}, startErr
	}}
	ir := NewInstructionRunner(runner, "", "", discardLogger())

	err := ir.RunAll(context.Background(), newTestServer(runner), []config.Instruction{
		{ExecutionSide: config.SideLocal, Args: []string{"rsync", "-a", "x", "y"}},
	})
	var ie *InstructionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, -1, ie.ExitCode)
	assert.Equal(t, "rsync -a x y", ie.Command)
	assert.ErrorIs(t, err, startErr)
}

func TestInstructionRunner_RealProcesses(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "never")

	runner := execution.NewProcessRunner(discardLogger())
	ir := NewInstructionRunner(runner, "sh", dir, discardLogger())

	err := ir.RunAll(context.Background(), newTestServer(runner), []config.Instruction{
		{ExecutionSide: config.SideLocal, Command: "true"},
		{ExecutionSide: config.SideLocal, Command: "echo nope >&2; exit 3"},
		{ExecutionSide: config.SideLocal, Args: []string{"touch", marker}},
	})

	var ie *InstructionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, 3, ie.ExitCode)
	assert.Contains(t, err.Error(), "nope")

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "instruction after the failure must not run")
}

func TestInstructionStage_NoInstructions(t *testing.T) {
	stage := NewInstructionStage(nil, NewInstructionRunner(&recordingRunner{}, "", "", discardLogger()))
	needs, err := stage.NeedsExecution(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, needs)
}
