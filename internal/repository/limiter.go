package repository

import "context"

// Limiter throttles state-changing actions to one per user per cooldown
// window. Throttled events are dropped, never queued.
type Limiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}
