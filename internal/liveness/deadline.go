package liveness

import "time"

// Deadline bounds a polling loop. It expires once Timeout has elapsed since it was started.
type Deadline struct {
	start   time.Time
	timeout time.Duration
	now     func() time.Time
}

// StartDeadline starts a deadline on the wall clock.
func StartDeadline(timeout time.Duration) Deadline {
	return StartDeadlineAt(time.Now, timeout)
}

// StartDeadlineAt starts a deadline on the given clock.
func StartDeadlineAt(now func() time.Time, timeout time.Duration) Deadline {
	if now == nil {
		now = time.Now
	}
	return Deadline{start: now(), timeout: timeout, now: now}
}

func (d Deadline) Timeout() time.Duration { return d.timeout }

func (d Deadline) Elapsed() time.Duration {
	return d.now().Sub(d.start)
}

func (d Deadline) Expired() bool {
	return d.Elapsed() >= d.timeout
}

// Remaining is the time left before the deadline expires, never negative.
func (d Deadline) Remaining() time.Duration {
	return max(d.timeout-d.Elapsed(), 0)
}
