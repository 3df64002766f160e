package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores session keys in Redis under a common prefix, letting
// several CLI hosts share one signed-in session.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage returns a backend writing "<prefix>:<key>". An empty
// prefix defaults to "gocinema".
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "gocinema"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + ":" + k
}

// Ping checks connectivity.
func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
