package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storesync/backend/internal/application/reconcile"
)

// RedisSyncGate implements the per-item reconciliation gate on Redis.
// This is suitable for distributed deployments where multiple instances
// must not reconcile the same item concurrently.
type RedisSyncGate struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

var _ reconcile.Gate = (*RedisSyncGate)(nil)

// NewRedisSyncGate creates a new Redis-based sync gate
func NewRedisSyncGate(cfg RedisConfig) (*RedisSyncGate, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSyncGate{
		client:    client,
		keyPrefix: "sync:gate:",
	}, nil
}

// NewRedisSyncGateWithClient creates a gate with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisSyncGateWithClient(client *redis.Client, keyPrefix string) *RedisSyncGate {
	if keyPrefix == "" {
		keyPrefix = "sync:gate:"
	}
	return &RedisSyncGate{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims the gate for a key. SETNX with TTL is a single atomic
// operation; true means this caller now holds the gate, false means another
// holder already does. The TTL bounds how long a crashed holder can block.
func (g *RedisSyncGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync gate: %w", err)
	}
	return acquired, nil
}

// Release frees the gate for a key. Releasing an unheld key is a no-op.
func (g *RedisSyncGate) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release sync gate: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisSyncGate) Close() error {
	return g.client.Close()
}
