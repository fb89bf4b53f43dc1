package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisSnapshotStore persists snapshots as plain string values. Snapshots
// never expire; the engine owns their lifecycle.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: client,
	}
}

func (rs *RedisSnapshotStore) Get(ctx context.Context, key string) (string, error) {
	value, err := rs.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (rs *RedisSnapshotStore) Set(ctx context.Context, key, value string) error {
	return rs.client.Set(ctx, key, value, 0).Err()
}

func (rs *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	return rs.client.Del(ctx, key).Err()
}

// Ping verifies connectivity at startup.
func (rs *RedisSnapshotStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rs.client.Ping(ctx).Err(); err != nil {
		logrus.Error("Redis ping failed: ", err)
		return err
	}
	return nil
}
