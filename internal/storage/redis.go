package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the history blob under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(host, port string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, key: HistoryKey}, nil
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	result := r.client.Get(ctx, r.key)
	if result.Err() == redis.Nil {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to read history from Redis: %w", result.Err())
	}
	return []byte(result.Val()), nil
}

func (r *RedisStore) Save(ctx context.Context, data []byte) error {
	// No TTL: history lives until the store is cleared externally.
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write history to Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
