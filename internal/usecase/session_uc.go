package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase holds the tracked PNR session of every chat.
type SessionUseCase interface {
	// RegisterPNR replaces the chat's session wholesale, discarding its baseline.
	// On domain.ErrInvalidPNR the prior session is left untouched.
	RegisterPNR(ctx context.Context, chatID int64, pnr string) (*model.Session, error)
	// RecordBaseline stores a fetch of pnr as the chat's baseline. If the chat
	// now tracks a different PNR it fails with domain.ErrSessionReplaced and
	// writes nothing.
	RecordBaseline(ctx context.Context, chatID int64, pnr model.PNR, statusText string, passengerStatuses []string) error
	// Current returns a snapshot or domain.ErrSessionNotFound.
	Current(ctx context.Context, chatID int64) (*model.Session, error)
	Remove(ctx context.Context, chatID int64) error
	List(ctx context.Context) ([]*model.Session, error)
}

type sessionUC struct {
	sessions repository.SessionRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewSessionUseCase(sessions repository.SessionRepository, tm repository.TransactionManager, logger *zerolog.Logger) *sessionUC {
	return &sessionUC{
		sessions: sessions,
		tm:       tm,
		log:      logger,
	}
}

func (u *sessionUC) RegisterPNR(ctx context.Context, chatID int64, raw string) (*model.Session, error) {
	defer logging.TraceDuration(u.log, "SessionUC.RegisterPNR")()

	pnr, err := model.ParsePNR(raw)
	if err != nil {
		return nil, err
	}
	sess, err := model.NewSession(chatID, pnr)
	if err != nil {
		return nil, err
	}
	if err := u.sessions.Save(ctx, repository.NoTX, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.IncPNRRegistered()
	return sess.Clone(), nil
}

func (u *sessionUC) RecordBaseline(ctx context.Context, chatID int64, pnr model.PNR, statusText string, passengerStatuses []string) error {
	defer logging.TraceDuration(u.log, "SessionUC.RecordBaseline")()

	// the row is locked for the read-modify-write; a registration committed
	// by another replica since the fetch shows up as a different PNR
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		sess, err := u.sessions.FindByChatID(ctx, tx, chatID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrSessionNotFound
			}
			return err
		}
		if sess.PNR != pnr {
			return domain.ErrSessionReplaced
		}
		sess.Record(statusText, passengerStatuses)
		if err := u.sessions.Save(ctx, tx, sess); err != nil {
			u.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to record baseline")
			return err
		}
		return nil
	})
}

func (u *sessionUC) Current(ctx context.Context, chatID int64) (*model.Session, error) {
	defer logging.TraceDuration(u.log, "SessionUC.Current")()
	sess, err := u.sessions.FindByChatID(ctx, repository.NoTX, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return sess.Clone(), nil
}

func (u *sessionUC) Remove(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(u.log, "SessionUC.Remove")()
	err := u.sessions.Delete(ctx, repository.NoTX, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrSessionNotFound
	}
	return err
}

func (u *sessionUC) List(ctx context.Context) ([]*model.Session, error) {
	defer logging.TraceDuration(u.log, "SessionUC.List")()
	return u.sessions.ListAll(ctx, repository.NoTX)
}
