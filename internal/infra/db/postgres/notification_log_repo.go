package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, e *repository.NotificationEntry) error {
	if e == nil || e.ChatID == 0 {
		return domain.ErrInvalidArgument
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `
INSERT INTO pnr_notifications (id, chat_id, pnr, kind, text, delivered, created_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`

	var createdAt interface{}
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.ChatID, e.PNR, string(e.Kind), e.Text, e.Delivered, createdAt)
	return err
}

func (r *notificationLogRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID int64, limit int) ([]*repository.NotificationEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id::text, chat_id, pnr, kind, text, delivered, created_at
FROM pnr_notifications
WHERE chat_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := queryRows(ctx, r.pool, tx, q, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.NotificationEntry
	for rows.Next() {
		var (
			e    repository.NotificationEntry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.ChatID, &e.PNR, &kind, &e.Text, &e.Delivered, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.Kind = repository.NotificationKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}
