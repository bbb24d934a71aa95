package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/itsneelabh/mymarket/pkg/logger"
)

// DefaultNamespace prefixes every Redis key written by RedisBackend.
const DefaultNamespace = "mymarket"

// RedisBackend stores each artifact as one Redis string value.
// Keys follow the pattern {namespace}:{kind}:{owner}; catalog-wide kinds
// drop the owner segment.
type RedisBackend struct {
	client    *redis.Client
	namespace string
	logger    logger.Logger
}

// NewRedisBackend wraps an already configured client.
func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisBackend{
		client:    client,
		namespace: namespace,
		logger:    &logger.NoOpLogger{},
	}
}

// DialRedis parses redisURL, connects and pings the server.
func DialRedis(ctx context.Context, redisURL, namespace string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBackend(client, namespace), nil
}

// SetLogger configures the logger for this backend
func (r *RedisBackend) SetLogger(l logger.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Name identifies the backend.
func (r *RedisBackend) Name() string { return "redis" }

// Close releases the underlying client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

// RedisKey returns the Redis key that holds key.
func (r *RedisBackend) RedisKey(key Key) string {
	if key.Owner == "" {
		return fmt.Sprintf("%s:%s", r.namespace, key.Kind)
	}
	return fmt.Sprintf("%s:%s:%s", r.namespace, key.Kind, key.Owner)
}

// Read returns the stored value or ErrNotFound.
func (r *RedisBackend) Read(ctx context.Context, key Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, r.RedisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("read %s: %w", key, ErrNotFound)
		}
		r.logger.Error("Failed to read artifact", map[string]interface{}{
			"key":   r.RedisKey(key),
			"error": err.Error(),
		})
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the stored value. Values never expire.
func (r *RedisBackend) Write(ctx context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.RedisKey(key), data, 0).Err(); err != nil {
		r.logger.Error("Failed to write artifact", map[string]interface{}{
			"key":   r.RedisKey(key),
			"error": err.Error(),
		})
		return fmt.Errorf("write %s: %w", key, err)
	}
	r.logger.Debug("Artifact written", map[string]interface{}{
		"key":   r.RedisKey(key),
		"bytes": len(data),
	})
	return nil
}

// Append uses APPEND, which creates the key when absent.
func (r *RedisBackend) Append(ctx context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := r.client.Append(ctx, r.RedisKey(key), string(data)).Err(); err != nil {
		r.logger.Error("Failed to append artifact", map[string]interface{}{
			"key":   r.RedisKey(key),
			"error": err.Error(),
		})
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}
