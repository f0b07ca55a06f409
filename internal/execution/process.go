package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// pipeWaitDelay bounds how long Wait keeps copying output after the child
// exited while a background process it started still holds the pipes.
const pipeWaitDelay = time.Second

// ProcessRunner runs commands as local child processes.
type ProcessRunner struct {
	logger *slog.Logger
}

// NewProcessRunner creates a ProcessRunner that streams output to logger.
func NewProcessRunner(logger *slog.Logger) *ProcessRunner {
	return &ProcessRunner{logger: logger}
}

// Run starts the command, waits for it to exit and returns the captured output.
// A non-zero exit is an error only when c.MustSucceed is set; failing to start
// the program or a cancelled context is always an error.
func (r *ProcessRunner) Run(ctx context.Context, c Command) (Result, error) {
	if strings.TrimSpace(c.Program) == "" {
		return Result{ExitCode: -1}, errors.New("empty program")
	}

	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = workingDir(c.Dir)
	// The child leads its own process group so cancellation also reaches
	// anything it started.
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = pipeWaitDelay

	r.logger.Debug("Starting process", "command", c.String(), "dir", cmd.Dir)

	var (
		res Result
		err error
	)
	if c.UsePTY {
		res, err = r.runWithPTY(cmd, c)
	} else {
		res, err = r.runPiped(cmd, c)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("command %q interrupted: %w", c.String(), ctxErr)
	}
	if err != nil {
		return res, err
	}

	r.logger.Debug("Process finished", "command", c.String(), "exit_code", res.ExitCode)

	if !res.Success && c.MustSucceed {
		return res, &FailureError{Command: c, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// runPiped hands the capture writers to exec so Wait owns the copy and
// pipeWaitDelay bounds it.
func (r *ProcessRunner) runPiped(cmd *exec.Cmd, c Command) (Result, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLog, stderrLog := r.streams(c)
	cmd.Stdout = destination(&stdoutBuf, stdoutLog)
	cmd.Stderr = destination(&stderrBuf, stderrLog)

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("failed to start %q: %w", c.Program, err)
	}

	waitErr := cmd.Wait()
	flush(stdoutLog, stderrLog)
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		r.logger.Debug("Output still held by a background process, pipes closed", "command", c.String())
	}

	exitCode, err := exitStatus(waitErr)
	if err != nil {
		return Result{ExitCode: exitCode}, fmt.Errorf("failed to wait for %q: %w", c.Program, err)
	}
	return Result{
		Success:  exitCode == 0,
		ExitCode: exitCode,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
	}, nil
}

// runWithPTY starts the child in a new session, which also makes it the
// leader of the process group cmd.Cancel kills.
func (r *ProcessRunner) runWithPTY(cmd *exec.Cmd, c Command) (Result, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("failed to start %q on a pty: %w", c.Program, err)
	}
	defer ptmx.Close()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		_ = pty.InheritSize(os.Stdout, ptmx)
	}

	var outBuf bytes.Buffer
	outLog, _ := r.streams(c)

	copyDone := make(chan struct{})
	go func() {
		// Reading the master returns EIO once the child closes the terminal.
		_, _ = io.Copy(destination(&outBuf, outLog), ptmx)
		close(copyDone)
	}()

	waitErr := cmd.Wait()
	<-copyDone
	flush(outLog)

	exitCode, err := exitStatus(waitErr)
	if err != nil {
		return Result{ExitCode: exitCode}, fmt.Errorf("failed to wait for %q: %w", c.Program, err)
	}
	return Result{
		Success:  exitCode == 0,
		ExitCode: exitCode,
		Stdout:   outBuf.String(),
	}, nil
}

func (r *ProcessRunner) streams(c Command) (*lineLogger, *lineLogger) {
	if !c.Stream {
		return nil, nil
	}
	logger := r.logger.With("program", c.Program)
	return newLineLogger(logger, "stdout"), newLineLogger(logger, "stderr")
}

func flush(loggers ...*lineLogger) {
	for _, l := range loggers {
		if l != nil {
			l.Flush()
		}
	}
}

// exitStatus maps the error from cmd.Wait to an exit code. Only errors that
// are not a plain non-zero exit are returned. ErrWaitDelay is only reported
// for a child that exited with status 0.
func exitStatus(waitErr error) (int, error) {
	if waitErr == nil || errors.Is(waitErr, exec.ErrWaitDelay) {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, waitErr
}

func workingDir(dir string) string {
	if dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}
