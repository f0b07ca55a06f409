package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	goconfig "github.com/tpodg/go-config"
)

const (
	DefaultConfigFileName = ".wakenrun.yaml"
	EnvPrefix             = "WAKENRUN"
)

// Side tells where an instruction runs.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// Task is one wake, run and shutdown cycle against a single host.
type Task struct {
	Host            string         `yaml:"host" json:"host" validate:"required,hostname_rfc1123|ip"`
	SSH             SSHConfig      `yaml:"ssh" json:"ssh"`
	Wake            WakeConfig     `yaml:"wakeup_instructions" json:"wakeup_instructions"`
	Instructions    []Instruction  `yaml:"instructions" json:"instructions" validate:"dive"`
	Shutdown        ShutdownConfig `yaml:"after_instructions" json:"after_instructions"`
	PingCmd         string         `yaml:"ping_cmd,omitempty" json:"ping_cmd,omitempty"`
	SessionCheckCmd string         `yaml:"session_check_cmd,omitempty" json:"session_check_cmd,omitempty"`
	LocalShell      string         `yaml:"local_shell,omitempty" json:"local_shell,omitempty"`
	PollIntervalMs  int            `yaml:"poll_interval_ms,omitempty" json:"poll_interval_ms,omitempty" validate:"gte=0"`
	// WorkingDir is where child processes start. Empty means the user's home directory.
	WorkingDir string `yaml:"working_dir,omitempty" json:"working_dir,omitempty"`
}

// SSHConfig configures the external ssh client. Zero values leave the
// choice to the client.
type SSHConfig struct {
	Cmd          string   `yaml:"cmd,omitempty" json:"cmd,omitempty"`
	IdentityFile string   `yaml:"identity_file,omitempty" json:"identity_file,omitempty"`
	Port         int      `yaml:"port,omitempty" json:"port,omitempty" validate:"gte=0,lte=65535"`
	User         string   `yaml:"user,omitempty" json:"user,omitempty"`
	Options      []string `yaml:"options,omitempty" json:"options,omitempty" jsonschema_description:"Extra -o options passed to the ssh client"`
	PTY          bool     `yaml:"pty,omitempty" json:"pty,omitempty" jsonschema_description:"Run the ssh client under a local pseudo-terminal"`
}

type WakeConfig struct {
	Enabled               bool   `yaml:"enabled" json:"enabled"`
	MAC                   string `yaml:"mac,omitempty" json:"mac,omitempty"`
	Broadcast             string `yaml:"broadcast,omitempty" json:"broadcast,omitempty" validate:"omitempty,hostname_port"`
	BootTimeoutSecs       int    `yaml:"boot_timeout_secs,omitempty" json:"boot_timeout_secs,omitempty" validate:"gte=0"`
	ValidatePing          bool   `yaml:"validate_ping" json:"validate_ping"`
	ValidateSSHConnection bool   `yaml:"validate_ssh_connection" json:"validate_ssh_connection"`
}

func (w WakeConfig) BootTimeout() time.Duration {
	return time.Duration(w.BootTimeoutSecs) * time.Second
}

// Instruction is a single command. Local instructions give either a shell
// command or a pre-split argument vector; remote ones always give a command.
type Instruction struct {
	ExecutionSide Side     `yaml:"execution_side" json:"execution_side" validate:"required,oneof=local remote" jsonschema:"enum=local,enum=remote"`
	Command       string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args          []string `yaml:"args,omitempty" json:"args,omitempty"`
}

type ShutdownConfig struct {
	ShutdownRemote      bool   `yaml:"shutdown_remote" json:"shutdown_remote"`
	ShutdownCmd         string `yaml:"shutdown_cmd,omitempty" json:"shutdown_cmd,omitempty"`
	ValidateShutdown    bool   `yaml:"validate_shutdown" json:"validate_shutdown"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs,omitempty" json:"shutdown_timeout_secs,omitempty" validate:"gte=0"`
}

func (s ShutdownConfig) Timeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSecs) * time.Second
}

func (t *Task) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

// Error is a configuration problem found before any side effect.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the task from the given file or default locations, overlays
// WAKENRUN_* environment variables, applies defaults and validates it.
// Variable names come from the Go field path, e.g. WAKENRUN_SHUTDOWN_SHUTDOWNCMD.
func Load(cfgFile string) (*Task, error) {
	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if path == "" {
		return nil, &Error{Err: fmt.Errorf("no task file given and no %s found in the home or current directory", DefaultConfigFileName)}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to get absolute path for %s: %w", path, err)}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to read task file %s: %w", path, err)}
	}
	// The providers below are lenient about unknown keys.
	var strict Task
	if err := yaml.UnmarshalWithOptions(data, &strict, yaml.Strict()); err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to parse task file %s: %w", path, err)}
	}

	c := goconfig.New()
	c.WithProviders(&goconfig.Yaml{Path: absPath})
	c.WithProviders(&goconfig.Env{Prefix: EnvPrefix})

	task := &Task{}
	if err := c.Parse(task); err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to unmarshal task: %w", err)}
	}

	ApplyDefaults(task)
	if err := Validate(task); err != nil {
		return nil, err
	}
	return task, nil
}

func findConfigFile(cfgFile string) (string, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("failed to read task file %s: %w", cfgFile, err)
		}
		return cfgFile, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if _, err := os.Stat(DefaultConfigFileName); err == nil {
		return DefaultConfigFileName, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	return "", nil
}
