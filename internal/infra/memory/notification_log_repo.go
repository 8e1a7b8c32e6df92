package memory

import (
	"context"
	"sync"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*NotificationLogRepo)(nil)

// NotificationLogRepo is a bounded in-memory log per chat.
type NotificationLogRepo struct {
	mu      sync.Mutex
	perChat int
	entries map[int64][]*repository.NotificationEntry
}

func NewNotificationLogRepo(perChat int) *NotificationLogRepo {
	if perChat <= 0 {
		perChat = 50
	}
	return &NotificationLogRepo{perChat: perChat, entries: make(map[int64][]*repository.NotificationEntry)}
}

func (r *NotificationLogRepo) Save(ctx context.Context, _ repository.Tx, e *repository.NotificationEntry) error {
	if e == nil || e.ChatID == 0 {
		return domain.ErrInvalidArgument
	}
	cp := *e
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.entries[e.ChatID], &cp)
	if len(list) > r.perChat {
		list = list[len(list)-r.perChat:]
	}
	r.entries[e.ChatID] = list
	return nil
}

func (r *NotificationLogRepo) ListByChat(ctx context.Context, _ repository.Tx, chatID int64, limit int) ([]*repository.NotificationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.entries[chatID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*repository.NotificationEntry, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}
