package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amoradev/amora-backend/internal/repository"
)

type limiter struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewLimiter implements the fixed-window action cooldown with SET NX: the
// first action in a window claims the key, later ones are dropped until it
// expires.
func NewLimiter(client *redis.Client, cooldown time.Duration) repository.Limiter {
	return &limiter{client: client, cooldown: cooldown}
}

func (l *limiter) Allow(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("cooldown:%d", userID)
	ok, err := l.client.SetNX(ctx, key, 1, l.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown check for %d: %w", userID, err)
	}
	return ok, nil
}
