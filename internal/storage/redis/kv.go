package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/storage"
)

const keyPrefix = "storefront:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL applies to every write; zero keeps keys until deleted.
	TTL time.Duration
}

// KV implements storage.KV on Redis.
type KV struct {
	client *redis.Client
	ttl    time.Duration
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*KV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return New(client, cfg.TTL), nil
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *KV {
	return &KV{client: client, ttl: ttl}
}

// Get retrieves the value stored under key.
func (s *KV) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key with the configured TTL.
func (s *KV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *KV) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KV) Close() error {
	return s.client.Close()
}
