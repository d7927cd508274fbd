package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PredictionCache stores outcomes by the hash of the normalized resume text.
// Failures are logged and treated as misses.
type PredictionCache interface {
	Get(ctx context.Context, key string) (*Outcome, bool)
	Set(ctx context.Context, key string, outcome *Outcome)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ io.Closer = (*redisCache)(nil)

func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, log *zap.Logger) (PredictionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &redisCache{client: client, ttl: ttl, log: log}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (*Outcome, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("prediction cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var outcome Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		c.log.Warn("prediction cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &outcome, true
}

func (c *redisCache) Set(ctx context.Context, key string, outcome *Outcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		c.log.Warn("prediction cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("prediction cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the connection pool.
func (c *redisCache) Close() error {
	return c.client.Close()
}

type noopCache struct{}

// NewNoopCache returns a cache that never hits.
func NewNoopCache() PredictionCache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) (*Outcome, bool) { return nil, false }

func (noopCache) Set(context.Context, string, *Outcome) {}

// PredictionCacheKey scopes normalized text to a model version.
func PredictionCacheKey(modelVersion, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("prediction:%s:%s", modelVersion, hex.EncodeToString(sum[:]))
}
