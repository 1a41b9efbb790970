package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/devskill-org/sunclock/solar"
)

var (
	// ErrEventPassed is returned by WaitUntil when the event, plus any
	// offset, is already in the past.
	ErrEventPassed = errors.New("event has already passed")

	// ErrEventNeverOccurs is returned by WaitUntil when the event does not
	// happen on the day of the snapshot.
	ErrEventNeverOccurs = errors.New("event does not occur on this day")
)

// Waiter sleeps until a solar event.
type Waiter struct {
	clock func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewWaiter returns a Waiter using the wall clock.
func NewWaiter() *Waiter {
	return &Waiter{clock: time.Now, after: time.After}
}

// Target returns the instant at which a wait for event on the day of calcs,
// shifted by offset, ends.
func Target(event solar.Event, calcs *solar.Calculations, offset time.Duration) (time.Time, error) {
	when, ok := solar.Resolve(event, calcs).Time()
	if !ok {
		return time.Time{}, ErrEventNeverOccurs
	}
	return when.Add(offset), nil
}

// WaitUntil blocks until event, shifted by offset, on the day of calcs. It
// returns the target instant, ErrEventPassed if it is already in the past
// or ctx.Err() if ctx is done first.
func (w *Waiter) WaitUntil(ctx context.Context, event solar.Event, calcs *solar.Calculations, offset time.Duration) (time.Time, error) {
	target, err := Target(event, calcs, offset)
	if err != nil {
		return time.Time{}, err
	}
	remaining := target.Sub(w.clock())
	if remaining < 0 {
		return target, fmt.Errorf("%w: %s", ErrEventPassed, target.Format(time.RFC3339))
	}

	ctxlog.Logger(ctx).Info("waiting", "until", target.Format(time.RFC3339), "remaining", remaining.Round(time.Second))
	select {
	case <-w.after(remaining):
		return target, nil
	case <-ctx.Done():
		return target, ctx.Err()
	}
}
