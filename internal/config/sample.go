package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
)

// Sample returns an illustrative task with every default spelled out.
func Sample() *Task {
	return &Task{
		Host: "192.168.1.20",
		SSH: SSHConfig{
			Cmd:          DefaultSSHCmd,
			IdentityFile: "~/.ssh/id_ed25519",
			Port:         22,
			User:         "admin",
		},
		Wake: WakeConfig{
			Enabled:               true,
			MAC:                   "aa:bb:cc:dd:ee:ff",
			Broadcast:             DefaultBroadcast,
			BootTimeoutSecs:       DefaultBootTimeoutSecs,
			ValidatePing:          true,
			ValidateSSHConnection: true,
		},
		Instructions: []Instruction{
			{ExecutionSide: SideLocal, Command: `echo "host is awake"`},
			{ExecutionSide: SideRemote, Command: "uptime"},
		},
		Shutdown: ShutdownConfig{
			ShutdownRemote:      true,
			ShutdownCmd:         DefaultShutdownCmd,
			ValidateShutdown:    true,
			ShutdownTimeoutSecs: DefaultShutdownTimeoutSecs,
		},
		PingCmd:         DefaultPingCmd,
		SessionCheckCmd: DefaultSessionCheckCmd,
		LocalShell:      DefaultLocalShell,
		PollIntervalMs:  DefaultPollIntervalMs,
	}
}

// WriteSample writes the sample task to path. An existing file is never overwritten.
func WriteSample(path string) error {
	data, err := yaml.Marshal(Sample())
	if err != nil {
		return fmt.Errorf("failed to marshal sample task: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Schema returns the JSON Schema of the task file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{FieldNameTag: "yaml"}
	s := r.Reflect(&Task{})
	s.Title = "wakenrun task"
	return json.MarshalIndent(s, "", "  ")
}
