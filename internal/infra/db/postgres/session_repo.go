package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) repository.SessionRepository {
	return &sessionRepo{pool: pool}
}

const sessionColumns = `chat_id, pnr, last_status_text, last_passenger_statuses, has_baseline, registered_at, checked_at, updated_at`

// Save upserts the whole session row; re-registration overwrites every column.
func (r *sessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	if s == nil || s.ChatID == 0 {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO pnr_sessions (` + sessionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (chat_id) DO UPDATE SET
    pnr                     = EXCLUDED.pnr,
    last_status_text        = EXCLUDED.last_status_text,
    last_passenger_statuses = EXCLUDED.last_passenger_statuses,
    has_baseline            = EXCLUDED.has_baseline,
    registered_at           = EXCLUDED.registered_at,
    checked_at              = EXCLUDED.checked_at,
    updated_at              = EXCLUDED.updated_at`

	statuses := s.LastPassengerStatuses
	if statuses == nil {
		statuses = []string{}
	}
	var checkedAt *time.Time
	if !s.CheckedAt.IsZero() {
		checkedAt = &s.CheckedAt
	}
	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ChatID, s.PNR.String(), s.LastStatusText, statuses, s.HasBaseline,
		s.RegisteredAt, checkedAt, updatedAt)
	return err
}

func (r *sessionRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM pnr_sessions WHERE chat_id = $1`
	if _, ok := tx.(pgx.Tx); ok {
		// read-modify-write inside a transaction
		q += ` FOR UPDATE`
	}
	row, err := pickRow(ctx, r.pool, tx, q, chatID)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, tx repository.Tx, chatID int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM pnr_sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Session, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+sessionColumns+` FROM pnr_sessions ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var (
		s         model.Session
		pnr       string
		checkedAt *time.Time
	)
	if err := row.Scan(&s.ChatID, &pnr, &s.LastStatusText, &s.LastPassengerStatuses,
		&s.HasBaseline, &s.RegisteredAt, &checkedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.PNR = model.PNR(pnr)
	if checkedAt != nil {
		s.CheckedAt = *checkedAt
	}
	return &s, nil
}
