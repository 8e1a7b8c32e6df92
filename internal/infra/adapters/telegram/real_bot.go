package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pnr-tracker/internal/config"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/metrics"
	red "pnr-tracker/internal/infra/redis"
	"pnr-tracker/internal/usecase"
)

// BotAPI is the slice of *tgbotapi.BotAPI the adapter drives.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter receives updates by polling or webhook and routes them to the tracker.
type RealTelegramBotAdapter struct {
	api       BotAPI
	tracker   usecase.TrackerUseCase
	limiter   RateLimiter
	tr        usecase.Translator
	perMinute int
	log       *zerolog.Logger

	// updateWorkers is how many goroutines concurrently process updates.
	updateWorkers int
	webhookFeed   chan tgbotapi.Update
	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter wires the adapter. limiter may be nil to disable rate limiting.
func NewRealTelegramBotAdapter(
	api BotAPI,
	cfg config.BotConfig,
	rl config.RateLimitConfig,
	tracker usecase.TrackerUseCase,
	limiter RateLimiter,
	tr usecase.Translator,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if tracker == nil {
		return nil, errors.New("tracker is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	compLog := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		api:           api,
		tracker:       tracker,
		limiter:       limiter,
		tr:            tr,
		perMinute:     rl.MessagesPerMinute,
		log:           &compLog,
		updateWorkers: workers,
		webhookFeed:   make(chan tgbotapi.Update, 100),
	}, nil
}

// StartPolling long-polls Telegram until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel
	defer cancel()

	r.log.Info().Int("workers", r.updateWorkers).Msg("polling for updates")
	r.dispatch(ctx, updates)
	r.api.StopReceivingUpdates()
	return nil
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// StartWebhook registers webhookURL with Telegram and processes what
// WebhookHandler receives until ctx is canceled.
func (r *RealTelegramBotAdapter) StartWebhook(ctx context.Context, webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return err
	}
	if _, err := r.api.Request(wh); err != nil {
		return err
	}
	r.log.Info().Int("workers", r.updateWorkers).Msg("webhook registered")
	r.dispatch(ctx, r.webhookFeed)
	return nil
}

// WebhookHandler accepts Telegram's POSTed updates. A full queue answers 503 so Telegram redelivers.
func (r *RealTelegramBotAdapter) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		select {
		case r.webhookFeed <- update:
			w.WriteHeader(http.StatusOK)
		default:
			r.log.Warn().Int("update_id", update.UpdateID).Msg("webhook queue full")
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
}

// dispatch fans updates out to the worker goroutines and waits for them on shutdown.
func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Warn().Err(err).Int("worker", workerID).Int("update_id", update.UpdateID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	func() {
		defer close(updateChan)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	metrics.IncTelegramCommand(command)

	if !r.allow(ctx, chatID) {
		return nil
	}

	if msg.IsCommand() {
		if fn, ok := r.commandRoutes()[msg.Command()]; ok {
			return fn(ctx, chatID)
		}
		return r.tracker.Help(ctx, chatID)
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	return r.tracker.HandleText(ctx, chatID, msg.Text)
}

type commandHandler func(ctx context.Context, chatID int64) error

func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.tracker.Start,
		"help":   r.tracker.Help,
		"status": r.tracker.Status,
		"stop":   r.tracker.Stop,
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}
	ctx = logging.WithChatID(ctx, chatID)

	data := strings.TrimSpace(query.Data)
	metrics.IncTelegramCommand("callback")

	// always stop the client spinner, with a toast for known actions
	toast := ""
	if data == usecase.ActionRefresh {
		toast = r.tr.T("callback_refreshing")
	}
	if _, err := r.api.Request(tgbotapi.NewCallback(query.ID, toast)); err != nil {
		logging.With(ctx, r.log).Debug().Err(err).Msg("failed to answer callback")
	}

	if !r.allow(ctx, chatID) {
		return nil
	}
	return r.tracker.HandleAction(ctx, chatID, data)
}

// allow applies the per-chat message budget. Limiter failures let the update through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, chatID int64) bool {
	if r.limiter == nil {
		return true
	}
	ok, err := r.limiter.Allow(ctx, red.ChatMessageKey(chatID), r.perMinute, time.Minute)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
		if _, err := r.api.Send(tgbotapi.NewMessage(chatID, r.tr.T("rate_limited"))); err != nil {
			logging.With(ctx, r.log).Debug().Err(err).Msg("failed to send rate limit notice")
		}
	}
	return ok
}
