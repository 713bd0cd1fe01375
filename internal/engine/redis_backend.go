package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(ctx context.Context, addr, password string, db int, key string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{client: client, key: key}, nil
}

func (r *RedisBackend) Name() string { return "redis:" + r.key }

func (r *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write relies on SET replacing the value in a single step.
func (r *RedisBackend) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
