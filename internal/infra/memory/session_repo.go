package memory

import (
	"context"
	"sort"
	"sync"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps sessions in process memory; they are lost on restart.
type SessionRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{store: make(map[int64]*model.Session)}
}

func (r *SessionRepo) Save(ctx context.Context, _ repository.Tx, s *model.Session) error {
	if s == nil || s.ChatID == 0 {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[s.ChatID] = s.Clone()
	return nil
}

func (r *SessionRepo) FindByChatID(ctx context.Context, _ repository.Tx, chatID int64) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *SessionRepo) Delete(ctx context.Context, _ repository.Tx, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[chatID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store, chatID)
	return nil
}

// ListAll returns sessions ordered by chat id.
func (r *SessionRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Session, error) {
	r.mu.RLock()
	out := make([]*model.Session, 0, len(r.store))
	for _, s := range r.store {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}
