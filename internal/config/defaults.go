package config

import "strings"

const (
	DefaultSSHCmd              = "ssh"
	DefaultBroadcast           = "255.255.255.255:9"
	DefaultBootTimeoutSecs     = 120
	DefaultShutdownCmd         = "sudo shutdown -h now"
	DefaultShutdownTimeoutSecs = 60
	DefaultPingCmd             = "ping"
	DefaultSessionCheckCmd     = "whoami"
	DefaultLocalShell          = "sh"
	DefaultPollIntervalMs      = 1000
)

// ApplyDefaults fills every optional field left at its zero value and
// normalizes execution sides, so "Remote" and "remote" are the same.
func ApplyDefaults(t *Task) {
	setDefault(&t.SSH.Cmd, DefaultSSHCmd)
	setDefault(&t.Wake.Broadcast, DefaultBroadcast)
	setDefault(&t.Wake.BootTimeoutSecs, DefaultBootTimeoutSecs)
	setDefault(&t.Shutdown.ShutdownCmd, DefaultShutdownCmd)
	setDefault(&t.Shutdown.ShutdownTimeoutSecs, DefaultShutdownTimeoutSecs)
	setDefault(&t.PingCmd, DefaultPingCmd)
	setDefault(&t.SessionCheckCmd, DefaultSessionCheckCmd)
	setDefault(&t.LocalShell, DefaultLocalShell)
	setDefault(&t.PollIntervalMs, DefaultPollIntervalMs)

	for i := range t.Instructions {
		in := &t.Instructions[i]
		in.ExecutionSide = Side(strings.ToLower(strings.TrimSpace(string(in.ExecutionSide))))
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}
