package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotbot/internal/config"
	"slotbot/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisPendingRegistry stores pending slot selections in Redis with a
// TTL, surviving bot restarts as long as Redis does.
type RedisPendingRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisPendingRegistry(client *redis.Client, ttl time.Duration) *RedisPendingRegistry {
	return &RedisPendingRegistry{client: client, ttl: ttl}
}

func pendingKey(userID int64) string {
	return fmt.Sprintf("pending:%d", userID)
}

func (r *RedisPendingRegistry) Get(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	if r.client == nil {
		return nil, errors.New("redis client is nil")
	}

	val, err := r.client.Get(ctx, pendingKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending selection: %w", err)
	}
	return decodeSelection(val)
}

func (r *RedisPendingRegistry) Set(ctx context.Context, sel *models.PendingSelection) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal pending selection: %w", err)
	}
	if err := r.client.Set(ctx, pendingKey(sel.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set pending selection: %w", err)
	}
	return nil
}

// Take uses GETDEL so get-and-remove is a single Redis operation.
func (r *RedisPendingRegistry) Take(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	if r.client == nil {
		return nil, errors.New("redis client is nil")
	}

	val, err := r.client.GetDel(ctx, pendingKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take pending selection: %w", err)
	}
	return decodeSelection(val)
}

func (r *RedisPendingRegistry) Clear(ctx context.Context, userID int64) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}

	if err := r.client.Del(ctx, pendingKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear pending selection: %w", err)
	}
	return nil
}

func decodeSelection(val string) (*models.PendingSelection, error) {
	var sel models.PendingSelection
	if err := json.Unmarshal([]byte(val), &sel); err != nil {
		return nil, fmt.Errorf("unmarshal pending selection: %w", err)
	}
	return &sel, nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
