//go:build !integration

package postgres

import (
	"context"
	"time"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
	red "pnr-tracker/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

type mockInnerSessionRepo struct {
	SaveFunc         func(ctx context.Context, tx repository.Tx, s *model.Session) error
	FindByChatIDFunc func(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error)
	DeleteFunc       func(ctx context.Context, tx repository.Tx, chatID int64) error
	ListAllFunc      func(ctx context.Context, tx repository.Tx) ([]*model.Session, error)
}

func (m *mockInnerSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	return m.SaveFunc(ctx, tx, s)
}
func (m *mockInnerSessionRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
	return m.FindByChatIDFunc(ctx, tx, chatID)
}
func (m *mockInnerSessionRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) error {
	return m.DeleteFunc(ctx, tx, chatID)
}
func (m *mockInnerSessionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Session, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks the Redis client for cache tests.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return nil, nil
}
func (m *mockRedisClient) Close() error { return nil }
