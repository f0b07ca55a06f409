package task

import (
	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/strutil"
)

// ResolveSSH turns the task's ssh block into client settings and resolves the
// working directory. Both paths are tilde-expanded and a configured identity
// file must be a readable regular file.
func ResolveSSH(t *config.Task) (server.SSHSettings, string, error) {
	identity, err := strutil.ExpandPath(t.SSH.IdentityFile)
	if err != nil {
		return server.SSHSettings{}, "", &config.Error{Field: "ssh.identity_file", Err: err}
	}
	if identity != "" {
		if err := server.CheckIdentityFile(identity); err != nil {
			return server.SSHSettings{}, "", &config.Error{Field: "ssh.identity_file", Err: err}
		}
	}

	workDir, err := strutil.ExpandPath(t.WorkingDir)
	if err != nil {
		return server.SSHSettings{}, "", &config.Error{Field: "working_dir", Err: err}
	}

	return server.SSHSettings{
		Program:      t.SSH.Cmd,
		IdentityFile: identity,
		Port:         t.SSH.Port,
		User:         t.SSH.User,
		Options:      t.SSH.Options,
		UsePTY:       t.SSH.PTY,
	}, workDir, nil
}
