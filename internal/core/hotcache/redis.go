package hotcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "transcript:"

// RedisCache keeps transcripts in Redis with a TTL so the hot set expires
// on its own, unlike the durable store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, videoID string) (string, bool, error) {
	if c == nil || c.client == nil {
		return "", false, nil
	}
	text, err := c.client.Get(ctx, keyPrefix+videoID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", videoID, err)
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, videoID, text string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, keyPrefix+videoID, text, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", videoID, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
