package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const (
	connectRetries = 5
	connectBackoff = 200 * time.Millisecond
)

// NewRedisStorage connects to redis and waits until it answers PING.
func NewRedisStorage(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	err := retry.Do(ctx, connectPolicy(), func(ctx context.Context) error {
		if err := conn.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}

func connectPolicy() retry.Backoff {
	return retry.WithMaxRetries(connectRetries, retry.NewExponential(connectBackoff))
}
