package task

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/server"
)

func TestResolveSSH(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(home, "id_ed25519"), pem.EncodeToMemory(block), 0600))

	task := testTask()
	task.SSH = config.SSHConfig{
		Cmd:          "ssh",
		User:         "admin",
		Port:         2222,
		IdentityFile: "~/id_ed25519",
		Options:      []string{"StrictHostKeyChecking=no"},
		PTY:          true,
	}
	task.WorkingDir = "~/jobs"

	settings, workDir, err := ResolveSSH(task)
	require.NoError(t, err)
	assert.Equal(t, server.SSHSettings{
		Program:      "ssh",
		IdentityFile: filepath.Join(home, "id_ed25519"),
		Port:         2222,
		User:         "admin",
		Options:      []string{"StrictHostKeyChecking=no"},
		UsePTY:       true,
	}, settings)
	assert.Equal(t, filepath.Join(home, "jobs"), workDir)
}

func TestResolveSSH_RejectsUnreadableIdentity(t *testing.T) {
	task := testTask()
	task.SSH.IdentityFile = filepath.Join(t.TempDir(), "missing")

	_, _, err := ResolveSSH(task)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ssh.identity_file", cfgErr.Field)
}
