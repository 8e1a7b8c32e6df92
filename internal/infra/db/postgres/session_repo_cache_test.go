//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
	"pnr-tracker/internal/infra/logging"
)

func TestSessionRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	sess := &model.Session{ChatID: 4242, PNR: "9876543210", HasBaseline: true, LastStatusText: "x", LastPassengerStatuses: []string{"WL5"}}

	t.Run("FindByChatID should fetch from DB and set cache on miss", func(t *testing.T) {
		innerCalled := false
		var cacheSets sync.Map
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", redis.Nil },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				cacheSets.Store(key, value)
				if expiration != 10*time.Minute {
					t.Errorf("unexpected ttl %v", expiration)
				}
				return nil
			},
		}
		inner := &mockInnerSessionRepo{
			FindByChatIDFunc: func(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
				innerCalled = true
				return sess, nil
			},
		}

		d := NewSessionRepoCacheDecorator(inner, mockRedis, 10*time.Minute, logging.Nop())
		got, err := d.FindByChatID(ctx, nil, 4242)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !innerCalled {
			t.Error("inner repository should be called on a cache miss")
		}
		if _, ok := cacheSets.Load("pnr_session:4242"); !ok {
			t.Error("cache was not warmed")
		}
		if got.PNR != sess.PNR {
			t.Errorf("wrong session returned: %+v", got)
		}
	})

	t.Run("FindByChatID should serve from cache on hit", func(t *testing.T) {
		b, _ := json.Marshal(sess)
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return string(b), nil },
		}
		inner := &mockInnerSessionRepo{
			FindByChatIDFunc: func(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
				t.Error("inner repository must not be called on a cache hit")
				return nil, nil
			},
		}
		got, err := NewSessionRepoCacheDecorator(inner, mockRedis, 0, logging.Nop()).FindByChatID(ctx, nil, 4242)
		if err != nil {
			t.Fatal(err)
		}
		if got.LastPassengerStatuses[0] != "WL5" || !got.HasBaseline {
			t.Errorf("cached session decoded incorrectly: %+v", got)
		}
	})

	t.Run("FindByChatID should bypass cache inside a transaction", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				t.Error("cache must not be read inside a transaction")
				return "", redis.Nil
			},
		}
		inner := &mockInnerSessionRepo{
			FindByChatIDFunc: func(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
				return sess, nil
			},
		}
		var someTx repository.Tx = "open-transaction"
		if _, err := NewSessionRepoCacheDecorator(inner, mockRedis, 0, logging.Nop()).FindByChatID(ctx, someTx, 4242); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("FindByChatID should not cache misses", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", redis.Nil },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				t.Error("not-found must not be cached")
				return nil
			},
		}
		inner := &mockInnerSessionRepo{
			FindByChatIDFunc: func(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
				return nil, domain.ErrNotFound
			},
		}
		_, err := NewSessionRepoCacheDecorator(inner, mockRedis, 0, logging.Nop()).FindByChatID(ctx, nil, 1)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Save and Delete should invalidate the key", func(t *testing.T) {
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		inner := &mockInnerSessionRepo{
			SaveFunc:   func(ctx context.Context, tx repository.Tx, s *model.Session) error { return nil },
			DeleteFunc: func(ctx context.Context, tx repository.Tx, chatID int64) error { return nil },
		}
		d := NewSessionRepoCacheDecorator(inner, mockRedis, 0, logging.Nop())
		if err := d.Save(ctx, nil, sess); err != nil {
			t.Fatal(err)
		}
		if err := d.Delete(ctx, nil, 4242); err != nil {
			t.Fatal(err)
		}
		// both invalidate before and after the write
		if len(deleted) != 4 {
			t.Fatalf("unexpected invalidations %v", deleted)
		}
		for _, k := range deleted {
			if k != "pnr_session:4242" {
				t.Errorf("unexpected key %q", k)
			}
		}
	})

	t.Run("Save inside a transaction should invalidate again only after commit", func(t *testing.T) {
		var deleted int
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted++
				return nil
			},
		}
		inner := &mockInnerSessionRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, s *model.Session) error { return nil },
		}
		d := NewSessionRepoCacheDecorator(inner, mockRedis, 0, logging.Nop())

		txCtx, hooks := withCommitHooks(ctx)
		var someTx repository.Tx = "open-transaction"
		if err := d.Save(txCtx, someTx, sess); err != nil {
			t.Fatal(err)
		}
		if deleted != 1 {
			t.Fatalf("expected one invalidation before commit, got %d", deleted)
		}

		hooks.run(ctx)
		if deleted != 2 {
			t.Errorf("expected the second invalidation after commit, got %d", deleted)
		}
	})
}

func TestAfterCommit(t *testing.T) {
	ctx := context.Background()

	ran := false
	AfterCommit(ctx, func(context.Context) { ran = true })
	if !ran {
		t.Error("hook outside a transaction should run immediately")
	}

	txCtx, hooks := withCommitHooks(ctx)
	var order []int
	AfterCommit(txCtx, func(context.Context) { order = append(order, 1) })
	AfterCommit(txCtx, func(context.Context) { order = append(order, 2) })
	if len(order) != 0 {
		t.Fatalf("hooks ran before commit: %v", order)
	}
	hooks.run(ctx)
	hooks.run(ctx)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("hooks should run once in registration order, got %v", order)
	}
}
