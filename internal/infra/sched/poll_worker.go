package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/metrics"
	red "pnr-tracker/internal/infra/redis"
	"pnr-tracker/internal/infra/worker"
	"pnr-tracker/internal/usecase"
)

type Submitter interface {
	SubmitWait(ctx context.Context, task worker.Task) error
}

// PollWorker periodically auto-checks every tracked session.
type PollWorker struct {
	interval time.Duration
	sessions usecase.SessionUseCase
	tracker  usecase.TrackerUseCase
	pool     Submitter
	locker   red.Locker
	lockTTL  time.Duration
	log      *zerolog.Logger
}

// NewPollWorker builds the scheduler. locker may be nil for single-replica deployments.
func NewPollWorker(interval time.Duration, sessions usecase.SessionUseCase, tracker usecase.TrackerUseCase, pool Submitter, locker red.Locker, logger *zerolog.Logger) *PollWorker {
	compLog := logger.With().Str("component", "PollWorker").Logger()
	return &PollWorker{
		interval: interval,
		sessions: sessions,
		tracker:  tracker,
		pool:     pool,
		locker:   locker,
		lockTTL:  interval,
		log:      &compLog,
	}
}

func (w *PollWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting poll worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping poll worker")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *PollWorker) runSweep(ctx context.Context) {
	metrics.IncPollRun()
	sessions, err := w.sessions.List(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list sessions")
		return
	}

	// submission waits for a free slot so every session gets its turn
	submitted := 0
	for _, s := range sessions {
		chatID := s.ChatID
		if err := w.pool.SubmitWait(ctx, func(ctx context.Context) error { return w.check(ctx, chatID) }); err != nil {
			metrics.IncPollCheck("dropped")
			w.log.Warn().Err(err).Int("remaining", len(sessions)-submitted).Msg("poll sweep interrupted")
			return
		}
		metrics.IncPollCheck("submitted")
		submitted++
	}
	w.log.Debug().Int("sessions", len(sessions)).Int("submitted", submitted).Msg("poll sweep done")
}

func (w *PollWorker) check(ctx context.Context, chatID int64) error {
	ctx = logging.WithChatID(logging.WithTraceID(ctx, logging.NewTraceID()), chatID)

	if w.locker != nil {
		key := red.PNRCheckKey(chatID)
		token, err := w.locker.TryLock(ctx, key, w.lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				metrics.IncPollCheck("skipped_locked")
				return nil
			}
			return err
		}
		defer func() {
			// the cycle ctx may already be cancelled
			uctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := w.locker.Unlock(uctx, key, token); err != nil {
				w.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to release check lock")
			}
		}()
	}

	_, err := w.tracker.AutoCheck(ctx, chatID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// untracked since the sweep listed it
		return nil
	}
	return err
}
