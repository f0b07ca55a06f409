package liveness

import (
	"fmt"
	"time"
)

// Kind names what a check waits for.
type Kind string

const (
	KindReachable   Kind = "reachability"
	KindUnreachable Kind = "reachability loss"
	KindSession     Kind = "session"
)

// TimeoutError is returned when a check exhausts its deadline.
type TimeoutError struct {
	Kind     Kind
	Host     string
	Timeout  time.Duration
	Attempts int
	// LastCommand is the command line of the last attempt.
	LastCommand string
}

func (e *TimeoutError) Error() string {
	var msg string
	switch e.Kind {
	case KindReachable:
		msg = fmt.Sprintf("host %s did not answer ping within %s", e.Host, e.Timeout)
	case KindUnreachable:
		msg = fmt.Sprintf("host %s still answered ping after %s", e.Host, e.Timeout)
	case KindSession:
		msg = fmt.Sprintf("no remote session on %s within %s", e.Host, e.Timeout)
	default:
		msg = fmt.Sprintf("%s check for %s timed out after %s", e.Kind, e.Host, e.Timeout)
	}
	msg += fmt.Sprintf(" (%d attempts", e.Attempts)
	if e.LastCommand != "" {
		msg += ", last: " + e.LastCommand
	}
	return msg + ")"
}

func (e *TimeoutError) Unwrap() error { return ErrDeadlineExceeded }
