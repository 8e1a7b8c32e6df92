package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/adapter"
	"pnr-tracker/internal/domain/ports/repository"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/metrics"
)

// ActionRefresh is the callback data of the inline refresh button.
const ActionRefresh = "refresh_pnr"

// Translator resolves user-facing message keys.
type Translator interface {
	T(key string, args ...interface{}) string
}

// Compile-time check
var _ TrackerUseCase = (*trackerUC)(nil)

// TrackerUseCase drives the fetch, detect and notify cycles of every chat.
// Cycles of the same chat never interleave; different chats run independently.
type TrackerUseCase interface {
	Start(ctx context.Context, chatID int64) error
	Help(ctx context.Context, chatID int64) error
	// HandleText treats text as a PNR registration, replying with a
	// validation error when it is not 10 digits.
	HandleText(ctx context.Context, chatID int64, text string) error
	// HandleAction runs the manual refresh for ActionRefresh and ignores anything else.
	HandleAction(ctx context.Context, chatID int64, actionID string) error
	AutoCheck(ctx context.Context, chatID int64) (model.Change, error)
	Refresh(ctx context.Context, chatID int64) error
	Status(ctx context.Context, chatID int64) error
	Stop(ctx context.Context, chatID int64) error
}

type TrackerOptions struct {
	FetchTimeout time.Duration
	Dev          bool
}

type trackerUC struct {
	sessions SessionUseCase
	fetcher  adapter.StatusFetcher
	notifier adapter.Notifier
	detector ChangeDetector
	notifLog repository.NotificationLogRepository
	tr       Translator
	opts     TrackerOptions
	locks    *chatLocks
	log      *zerolog.Logger
}

// NewTrackerUseCase wires the orchestrator. notifLog may be nil.
func NewTrackerUseCase(
	sessions SessionUseCase,
	fetcher adapter.StatusFetcher,
	notifier adapter.Notifier,
	detector ChangeDetector,
	notifLog repository.NotificationLogRepository,
	tr Translator,
	opts TrackerOptions,
	logger *zerolog.Logger,
) *trackerUC {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	compLog := logger.With().Str("component", "TrackerUC").Str("policy", detector.Name()).Logger()
	return &trackerUC{
		sessions: sessions,
		fetcher:  fetcher,
		notifier: notifier,
		detector: detector,
		notifLog: notifLog,
		tr:       tr,
		opts:     opts,
		locks:    newChatLocks(),
		log:      &compLog,
	}
}

func (t *trackerUC) Start(ctx context.Context, chatID int64) error {
	t.reply(ctx, chatID, t.tr.T("welcome"), nil)
	return nil
}

func (t *trackerUC) Help(ctx context.Context, chatID int64) error {
	t.reply(ctx, chatID, t.tr.T("help"), nil)
	return nil
}

func (t *trackerUC) HandleText(ctx context.Context, chatID int64, text string) error {
	defer logging.TraceDuration(t.log, "TrackerUC.HandleText")()

	// validate before taking the lock so malformed input never touches state
	if _, err := model.ParsePNR(text); err != nil {
		t.reply(ctx, chatID, t.tr.T("invalid_pnr"), nil)
		return nil
	}

	unlock := t.locks.Lock(chatID)
	defer unlock()

	sess, err := t.sessions.RegisterPNR(ctx, chatID, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPNR) {
			t.reply(ctx, chatID, t.tr.T("invalid_pnr"), nil)
			return nil
		}
		t.reply(ctx, chatID, t.tr.T("error_generic"), nil)
		return err
	}
	t.logger(ctx).Info().Str("pnr", logging.Redact(sess.PNR.String(), t.opts.Dev)).Msg("pnr registered")

	t.reply(ctx, chatID, t.tr.T("pnr_registered", sess.PNR), t.refreshButton("button_refresh_now"))

	_, err = t.autoCheckLocked(ctx, chatID)
	return err
}

func (t *trackerUC) HandleAction(ctx context.Context, chatID int64, actionID string) error {
	if actionID != ActionRefresh {
		t.logger(ctx).Debug().Str("action", actionID).Msg("ignoring unknown action")
		return nil
	}
	return t.Refresh(ctx, chatID)
}

func (t *trackerUC) AutoCheck(ctx context.Context, chatID int64) (model.Change, error) {
	defer logging.TraceDuration(t.log, "TrackerUC.AutoCheck")()
	unlock := t.locks.Lock(chatID)
	defer unlock()
	return t.autoCheckLocked(ctx, chatID)
}

// autoCheckLocked must be called with the chat's lock held.
func (t *trackerUC) autoCheckLocked(ctx context.Context, chatID int64) (model.Change, error) {
	log := t.logger(ctx)

	sess, err := t.sessions.Current(ctx, chatID)
	if err != nil {
		return model.Unchanged, err
	}

	report, err := t.fetch(ctx, sess.PNR)
	if err != nil {
		if ctx.Err() != nil {
			return model.Unchanged, ctx.Err()
		}
		log.Warn().Err(err).Msg("auto-check fetch failed")
		text := t.tr.T("error_fetch", fetchReason(err))
		delivered := t.reply(ctx, chatID, text, nil)
		t.logNotification(ctx, sess, repository.NotificationFetchFailed, text, delivered)
		return model.Unchanged, err
	}
	// a shutdown between fetch and notify must not produce a partial cycle
	if err := ctx.Err(); err != nil {
		return model.Unchanged, err
	}

	change := t.detector.Detect(sess.Baseline(), report)
	metrics.IncChangeDecision(t.detector.Name(), change.String())
	if change == model.Unchanged {
		log.Debug().Msg("no change in pnr status")
		return model.Unchanged, nil
	}

	statusText := report.Text()
	text := t.tr.T("status_updated", sess.PNR, statusText)
	delivered := t.reply(ctx, chatID, text, t.refreshButton("button_refresh"))
	metrics.IncNotification(string(repository.NotificationStatusChanged), delivered)
	t.logNotification(ctx, sess, repository.NotificationStatusChanged, text, delivered)
	if !delivered {
		// keep the old baseline so the next check notifies again
		return model.Changed, nil
	}
	if err := t.sessions.RecordBaseline(ctx, chatID, sess.PNR, statusText, report.CurrentStatuses()); err != nil {
		if errors.Is(err, domain.ErrSessionReplaced) {
			log.Info().Msg("pnr re-registered during check; baseline not recorded")
			return model.Changed, nil
		}
		log.Error().Err(err).Msg("failed to record baseline after notification")
		return model.Changed, err
	}
	return model.Changed, nil
}

func (t *trackerUC) Refresh(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(t.log, "TrackerUC.Refresh")()
	unlock := t.locks.Lock(chatID)
	defer unlock()

	log := t.logger(ctx)
	sess, err := t.sessions.Current(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			t.reply(ctx, chatID, t.tr.T("no_session"), nil)
			return nil
		}
		t.reply(ctx, chatID, t.tr.T("error_generic"), nil)
		return err
	}

	report, err := t.fetch(ctx, sess.PNR)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("refresh fetch failed")
		text := t.tr.T("error_refresh", fetchReason(err))
		delivered := t.reply(ctx, chatID, text, nil)
		t.logNotification(ctx, sess, repository.NotificationFetchFailed, text, delivered)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	statusText := report.Text()
	text := t.tr.T("status_refreshed", statusText)
	delivered := t.reply(ctx, chatID, text, t.refreshButton("button_refresh_again"))
	metrics.IncNotification(string(repository.NotificationRefreshed), delivered)
	t.logNotification(ctx, sess, repository.NotificationRefreshed, text, delivered)
	if !delivered {
		return nil
	}
	err = t.sessions.RecordBaseline(ctx, chatID, sess.PNR, statusText, report.CurrentStatuses())
	if errors.Is(err, domain.ErrSessionReplaced) {
		log.Info().Msg("pnr re-registered during refresh; baseline not recorded")
		return nil
	}
	return err
}

func (t *trackerUC) Status(ctx context.Context, chatID int64) error {
	sess, err := t.sessions.Current(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			t.reply(ctx, chatID, t.tr.T("no_session"), nil)
			return nil
		}
		t.reply(ctx, chatID, t.tr.T("error_generic"), nil)
		return err
	}

	text := t.tr.T("status_tracking", sess.PNR) + "\n"
	if sess.HasBaseline {
		text += t.tr.T("status_last_checked", sess.CheckedAt.Format(time.RFC822), sess.LastStatusText)
	} else {
		text += t.tr.T("status_no_baseline")
	}
	t.reply(ctx, chatID, text, t.refreshButton("button_refresh"))
	return nil
}

func (t *trackerUC) Stop(ctx context.Context, chatID int64) error {
	unlock := t.locks.Lock(chatID)
	defer unlock()

	sess, err := t.sessions.Current(ctx, chatID)
	if err == nil {
		err = t.sessions.Remove(ctx, chatID)
	}
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		t.reply(ctx, chatID, t.tr.T("no_session"), nil)
		return nil
	case err != nil:
		t.reply(ctx, chatID, t.tr.T("error_generic"), nil)
		return err
	}
	t.reply(ctx, chatID, t.tr.T("tracking_stopped", sess.PNR), nil)
	return nil
}

func (t *trackerUC) fetch(ctx context.Context, pnr model.PNR) (*model.StatusReport, error) {
	fctx, cancel := context.WithTimeout(ctx, t.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	report, err := t.fetcher.FetchStatus(fctx, pnr)
	if err == nil && report.IsEmpty() {
		err = domain.NewFetchError(domain.FetchNoData, "PNR status not found or invalid PNR", nil)
	}
	result := "ok"
	if err != nil {
		result = "error"
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			result = string(fe.Kind)
		}
	}
	metrics.ObserveFetch(result, time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// reply sends text and reports whether it was delivered. Delivery errors are
// logged here and never propagate into the cycle.
func (t *trackerUC) reply(ctx context.Context, chatID int64, text string, markup *adapter.ReplyMarkup) bool {
	err := t.notifier.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		t.logger(ctx).Error().Err(err).Msg("failed to deliver message")
		return false
	}
	return true
}

func (t *trackerUC) refreshButton(labelKey string) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{
		Buttons: [][]adapter.Button{{{Text: t.tr.T(labelKey), Data: ActionRefresh}}},
	}
}

func (t *trackerUC) logNotification(ctx context.Context, sess *model.Session, kind repository.NotificationKind, text string, delivered bool) {
	if t.notifLog == nil {
		return
	}
	entry := &repository.NotificationEntry{
		ID:        uuid.NewString(),
		ChatID:    sess.ChatID,
		PNR:       sess.PNR.String(),
		Kind:      kind,
		Text:      text,
		Delivered: delivered,
		CreatedAt: time.Now(),
	}
	if err := t.notifLog.Save(ctx, repository.NoTX, entry); err != nil {
		t.logger(ctx).Warn().Err(err).Msg("failed to save notification log")
	}
}

func (t *trackerUC) logger(ctx context.Context) *zerolog.Logger {
	return logging.With(ctx, t.log)
}

func fetchReason(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) && fe.Reason != "" {
		return fe.Reason
	}
	return "unexpected error"
}
