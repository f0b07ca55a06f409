package server

import (
	"context"
	"strconv"

	"github.com/tpodg/wakenrun/internal/execution"
)

const DefaultSSHProgram = "ssh"

// SSHSettings holds the options passed to the external ssh client.
// Zero values mean "use the client's own defaults".
type SSHSettings struct {
	Program      string
	IdentityFile string
	Port         int
	User         string
	// Options are extra "-o" client options, e.g. "ConnectTimeout=5".
	Options []string
	// UsePTY runs the client under a local pseudo-terminal.
	UsePTY bool
}

// BuildArgs returns the ssh client arguments that run command on host.
// The order is fixed: -t, identity options, port, extra options, target, command.
// command is passed as one opaque argument.
func BuildArgs(s SSHSettings, host, command string) []string {
	args := []string{"-t"}
	if s.IdentityFile != "" {
		args = append(args, "-i", s.IdentityFile, "-o", "IdentitiesOnly=yes")
	}
	if s.Port > 0 {
		args = append(args, "-p", strconv.Itoa(s.Port))
	}
	for _, opt := range s.Options {
		args = append(args, "-o", opt)
	}
	target := host
	if s.User != "" {
		target = s.User + "@" + host
	}
	return append(args, target, command)
}

// SSHServer executes commands through the external ssh client.
type SSHServer struct {
	address  string
	settings SSHSettings
	workDir  string
	runner   execution.Runner
}

func NewSSHServer(address string, settings SSHSettings, workDir string, runner execution.Runner) *SSHServer {
	return &SSHServer{
		address:  address,
		settings: settings,
		workDir:  workDir,
		runner:   runner,
	}
}

func (s *SSHServer) Address() string { return s.address }

func (s *SSHServer) Command(command string) execution.Command {
	return execution.Command{
		Program: s.program(),
		Args:    BuildArgs(s.settings, s.address, command),
		Dir:     s.workDir,
		UsePTY:  s.settings.UsePTY,
	}
}

func (s *SSHServer) Execute(ctx context.Context, command string, opts ExecOptions) (execution.Result, error) {
	cmd := s.Command(command)
	cmd.MustSucceed = opts.MustSucceed
	cmd.Stream = opts.Stream
	return s.runner.Run(ctx, cmd)
}

func (s *SSHServer) program() string {
	if s.settings.Program != "" {
		return s.settings.Program
	}
	return DefaultSSHProgram
}
