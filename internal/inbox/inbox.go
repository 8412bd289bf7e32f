// Package inbox remembers consumed event ids so redelivered envelopes are handled once.
package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an event id is remembered.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "inbox"

// Redis keeps processed ids as expiring keys.
type Redis struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a redis inbox. A non-positive ttl means DefaultTTL.
func NewRedis(client goredis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (goredis.UniversalClient, error) {
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    []string{addr},
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Seen reports whether id was processed on queue.
func (r *Redis) Seen(ctx context.Context, queue string, id uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, key(queue, id)).Result()
	if err != nil {
		return false, fmt.Errorf("inbox exists: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records id for queue until the ttl expires.
func (r *Redis) MarkProcessed(ctx context.Context, queue string, id uuid.UUID) error {
	if err := r.client.SetNX(ctx, key(queue, id), time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("inbox setnx: %w", err)
	}
	return nil
}

func key(queue string, id uuid.UUID) string {
	return keyPrefix + ":" + queue + ":" + id.String()
}

// Nop never remembers anything.
type Nop struct{}

// Seen - always false.
func (Nop) Seen(context.Context, string, uuid.UUID) (bool, error) { return false, nil }

// MarkProcessed - does nothing.
func (Nop) MarkProcessed(context.Context, string, uuid.UUID) error { return nil }
