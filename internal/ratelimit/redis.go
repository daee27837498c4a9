package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter whose counters live in Redis.
type Redis struct {
	client *redis.Client
	limit  int
	prefix string
	now    func() time.Time
}

// NewRedisClient connects to the Redis server at url and verifies it answers.
// Both redis:// URLs and bare host:port addresses are accepted.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedis creates a limiter allowing limit requests per key per Window.
func NewRedis(client *redis.Client, limit int) *Redis {
	return &Redis{client: client, limit: limit, prefix: "kopilka:ratelimit:", now: time.Now}
}

// windowKey names the counter for key in the window containing now.
func (r *Redis) windowKey(key string, now time.Time) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, key, now.Unix()/int64(Window/time.Second))
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.windowKey(key, r.now())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= int64(r.limit), nil
}
