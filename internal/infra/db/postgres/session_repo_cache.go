package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
	"pnr-tracker/internal/infra/metrics"
	red "pnr-tracker/internal/infra/redis"
)

var _ repository.SessionRepository = (*sessionRepoCacheDecorator)(nil)

// sessionRepoCacheDecorator serves non-transactional reads from Redis.
// Reads inside a transaction always reach the database.
type sessionRepoCacheDecorator struct {
	inner repository.SessionRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewSessionRepoCacheDecorator(inner repository.SessionRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	compLog := logger.With().Str("component", "SessionCache").Logger()
	return &sessionRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   &compLog,
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("pnr_session:%d", chatID)
}

// Writes invalidate before touching the database and again once the write is
// committed, which drops anything a concurrent reader cached in between.
func (d *sessionRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	if s == nil {
		return d.inner.Save(ctx, tx, s)
	}
	key := sessionKey(s.ChatID)
	_ = d.cache.Del(ctx, key)
	err := d.inner.Save(ctx, tx, s)
	d.invalidateAfterCommit(ctx, key)
	return err
}

func (d *sessionRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, chatID int64) error {
	key := sessionKey(chatID)
	_ = d.cache.Del(ctx, key)
	err := d.inner.Delete(ctx, tx, chatID)
	d.invalidateAfterCommit(ctx, key)
	return err
}

func (d *sessionRepoCacheDecorator) invalidateAfterCommit(ctx context.Context, key string) {
	AfterCommit(ctx, func(ctx context.Context) {
		if err := d.cache.Del(ctx, key); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("session cache invalidation failed")
		}
	})
}

func (d *sessionRepoCacheDecorator) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
	if tx != nil {
		metrics.IncCacheRequest("session", "bypass")
		return d.inner.FindByChatID(ctx, tx, chatID)
	}

	key := sessionKey(chatID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var s model.Session
		if json.Unmarshal([]byte(val), &s) == nil {
			metrics.IncCacheRequest("session", "hit")
			return &s, nil
		}
	} else if !red.IsNil(err) {
		d.log.Warn().Err(err).Int64("chat_id", chatID).Msg("session cache read failed")
	}

	metrics.IncCacheRequest("session", "miss")
	s, err := d.inner.FindByChatID(ctx, tx, chatID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(s); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return s, nil
}

func (d *sessionRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Session, error) {
	return d.inner.ListAll(ctx, tx)
}
