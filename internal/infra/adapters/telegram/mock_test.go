//go:build !integration

package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/usecase"
)

type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	sendErr  error
	stopped  bool
}

func newFakeBotAPI() *fakeBotAPI {
	return &fakeBotAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBotAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBotAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeBotAPI) sentMessages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBotAPI) callbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

// fakeTracker records which entry point each update reached.
type fakeTracker struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

var _ usecase.TrackerUseCase = (*fakeTracker)(nil)

func newFakeTracker() *fakeTracker { return &fakeTracker{done: make(chan struct{}, 10)} }

func (f *fakeTracker) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeTracker) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTracker) Start(ctx context.Context, chatID int64) error  { return f.record("start") }
func (f *fakeTracker) Help(ctx context.Context, chatID int64) error   { return f.record("help") }
func (f *fakeTracker) Status(ctx context.Context, chatID int64) error { return f.record("status") }
func (f *fakeTracker) Stop(ctx context.Context, chatID int64) error   { return f.record("stop") }
func (f *fakeTracker) Refresh(ctx context.Context, chatID int64) error {
	return f.record("refresh")
}
func (f *fakeTracker) HandleText(ctx context.Context, chatID int64, text string) error {
	return f.record("text:" + text)
}
func (f *fakeTracker) HandleAction(ctx context.Context, chatID int64, actionID string) error {
	return f.record("action:" + actionID)
}
func (f *fakeTracker) AutoCheck(ctx context.Context, chatID int64) (model.Change, error) {
	return model.Unchanged, f.record("autocheck")
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type staticTranslator map[string]string

func (s staticTranslator) T(key string, args ...interface{}) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}
