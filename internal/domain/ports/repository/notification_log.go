package repository

import (
	"context"
	"time"
)

// -----------------------------
// Notifications Log
// -----------------------------

type NotificationKind string

const (
	NotificationStatusChanged NotificationKind = "status_changed"
	NotificationRefreshed     NotificationKind = "refreshed"
	NotificationFetchFailed   NotificationKind = "fetch_failed"
)

type NotificationEntry struct {
	ID        string
	ChatID    int64
	PNR       string
	Kind      NotificationKind
	Text      string
	Delivered bool
	CreatedAt time.Time
}

type NotificationLogRepository interface {
	// Save records that a notification was attempted.
	Save(ctx context.Context, tx Tx, e *NotificationEntry) error
	// ListByChat returns the most recent entries first.
	ListByChat(ctx context.Context, tx Tx, chatID int64, limit int) ([]*NotificationEntry, error)
}
