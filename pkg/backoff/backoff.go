package backoff

import (
	"context"
	"time"
)

// Policy describes a bounded retry schedule with exponential delays.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Default matches the delivery expectations for store and transport calls:
// a few quick attempts, then give up.
var Default = Policy{
	MaxAttempts:  3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     2 * time.Second,
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is
// cancelled. The last error is returned. Delays double between attempts and
// are capped at MaxDelay.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	delay := p.InitialDelay
	var err error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err = fn(); err == nil {
			return nil
		}
	}

	return err
}
