package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authz:token:"

// CachedPrincipal is what the authorizer remembers about a token that
// validated successfully.
type CachedPrincipal struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PrincipalCache is keyed by the SHA-256 hex digest of the raw token.
// Get returns (nil, nil) on a miss.
type PrincipalCache interface {
	Get(ctx context.Context, tokenHash string) (*CachedPrincipal, error)
	Set(ctx context.Context, tokenHash string, value *CachedPrincipal, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, url string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if poolSize > 0 {
		opt.PoolSize = poolSize
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewPrincipalCache(client *redis.Client) PrincipalCache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, tokenHash string) (*CachedPrincipal, error) {
	val, err := r.client.Get(ctx, keyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var p CachedPrincipal
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached principal: %w", err)
	}

	return &p, nil
}

func (r *redisCache) Set(ctx context.Context, tokenHash string, value *CachedPrincipal, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached principal: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+tokenHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set redis cache: %w", err)
	}

	return nil
}
