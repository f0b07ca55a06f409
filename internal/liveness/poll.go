package liveness

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrDeadlineExceeded is returned by Until when the deadline expires before the check succeeds.
var ErrDeadlineExceeded = errors.New("deadline exceeded")

var errConditionNotMet = errors.New("condition not met")

// Check is one attempt. It reports whether the awaited condition holds.
// A returned error aborts polling.
type Check func(ctx context.Context) (bool, error)

// Until runs check until it reports true, fails, or d expires, sleeping
// interval between unsuccessful attempts. The deadline is only consulted
// between attempts, so a running attempt is never cut short by it.
// It returns the number of attempts made.
func Until(ctx context.Context, d Deadline, interval time.Duration, check Check) (int, error) {
	if d.Expired() {
		return 0, ErrDeadlineExceeded
	}

	attempts := 0
	operation := func() error {
		if attempts > 0 && d.Expired() {
			return backoff.Permanent(ErrDeadlineExceeded)
		}
		attempts++
		ok, err := check(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errConditionNotMet
		}
		return nil
	}

	b := backoff.WithContext(&deadlineBackOff{
		deadline: d,
		interval: backoff.NewConstantBackOff(interval),
	}, ctx)

	err := backoff.Retry(operation, b)
	if errors.Is(err, errConditionNotMet) {
		return attempts, ErrDeadlineExceeded
	}
	return attempts, err
}

// deadlineBackOff waits a fixed interval, shortened to what is left of the
// deadline, and stops once the deadline expires.
type deadlineBackOff struct {
	deadline Deadline
	interval backoff.BackOff
}

func (b *deadlineBackOff) NextBackOff() time.Duration {
	if b.deadline.Expired() {
		return backoff.Stop
	}
	next := b.interval.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	return min(next, b.deadline.Remaining())
}

func (b *deadlineBackOff) Reset() {
	b.interval.Reset()
}
