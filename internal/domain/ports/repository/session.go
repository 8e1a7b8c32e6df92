package repository

import (
	"context"

	"pnr-tracker/internal/domain/model"
)

// -----------------------------
// PNR Sessions
// -----------------------------

type SessionRepository interface {
	// Save inserts or replaces the session keyed by its chat id.
	Save(ctx context.Context, tx Tx, s *model.Session) error
	// FindByChatID returns domain.ErrNotFound when the chat tracks nothing.
	FindByChatID(ctx context.Context, tx Tx, chatID int64) (*model.Session, error)
	Delete(ctx context.Context, tx Tx, chatID int64) error
	ListAll(ctx context.Context, tx Tx) ([]*model.Session, error)
}
