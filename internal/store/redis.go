package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"classdraw/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps each collection as a JSON string under its collection key,
// optionally namespaced by Prefix.
type RedisStore struct {
	client *redis.Client
	Prefix string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, Prefix: prefix}
}

func (r *RedisStore) key(name string) string {
	return r.Prefix + name
}

func (r *RedisStore) get(ctx context.Context, name string, v interface{}) error {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) set(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := r.client.Set(ctx, r.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.get(ctx, UsersKey, &users)
	return users, err
}

func (r *RedisStore) SaveUsers(ctx context.Context, users []models.User) error {
	return r.set(ctx, UsersKey, nonNil(users))
}

func (r *RedisStore) LoadPrizes(ctx context.Context) ([]models.Prize, error) {
	var prizes []models.Prize
	err := r.get(ctx, PrizesKey, &prizes)
	return prizes, err
}

func (r *RedisStore) SavePrizes(ctx context.Context, prizes []models.Prize) error {
	return r.set(ctx, PrizesKey, nonNil(prizes))
}

func (r *RedisStore) LoadRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	var records []models.LotteryRecord
	err := r.get(ctx, RecordsKey, &records)
	return records, err
}

func (r *RedisStore) SaveRecords(ctx context.Context, records []models.LotteryRecord) error {
	return r.set(ctx, RecordsKey, nonNil(records))
}

var _ EntityStore = (*RedisStore)(nil)
