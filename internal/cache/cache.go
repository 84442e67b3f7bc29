package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

const (
	keyPrefix  = "promptpin:prompts:"
	DefaultTTL = 10 * time.Minute
)

// PromptCache holds the last harvested prompt list per feed.
type PromptCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing client. A non-positive ttl means DefaultTTL.
func New(rdb *redis.Client, ttl time.Duration) *PromptCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PromptCache{rdb: rdb, ttl: ttl}
}

// Connect dials Redis and checks the connection.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*PromptCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, ttl), nil
}

func key(feed string) string {
	return keyPrefix + feed
}

// Get returns the cached prompts for feed. ok is false on a miss.
func (c *PromptCache) Get(ctx context.Context, feed string) (prompts []prompt.ExtractedPrompt, ok bool, err error) {
	data, err := c.rdb.Get(ctx, key(feed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", feed, err)
	}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, false, fmt.Errorf("decode cached prompts: %w", err)
	}
	return prompts, true, nil
}

func (c *PromptCache) Set(ctx context.Context, feed string, prompts []prompt.ExtractedPrompt) error {
	if prompts == nil {
		prompts = []prompt.ExtractedPrompt{}
	}
	data, err := json.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	if err := c.rdb.Set(ctx, key(feed), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", feed, err)
	}
	return nil
}

func (c *PromptCache) Invalidate(ctx context.Context, feed string) error {
	return c.rdb.Del(ctx, key(feed)).Err()
}

func (c *PromptCache) Close() error {
	return c.rdb.Close()
}
