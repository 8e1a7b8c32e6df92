//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/adapter"
	"pnr-tracker/internal/infra/i18n"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/memory"
	"pnr-tracker/internal/usecase"
)

func newTestLogger() *zerolog.Logger { return logging.Nop() }

func newTestTranslator() usecase.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	return tr
}

// =============================
// Adapters
// =============================

// ---- Mock Notifier ----

type MockNotifier struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams

	SendMessageFunc func(ctx context.Context, params adapter.SendMessageParams) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, params); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockNotifier) Messages() []adapter.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.SendMessageParams, len(m.Sent))
	copy(out, m.Sent)
	return out
}

func (m *MockNotifier) Last() adapter.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return adapter.SendMessageParams{}
	}
	return m.Sent[len(m.Sent)-1]
}

// ---- Mock StatusFetcher ----

// MockFetcher serves Report (or Err) unless FetchFunc is set.
type MockFetcher struct {
	mu     sync.Mutex
	Report *model.StatusReport
	Err    error
	Calls  int32

	FetchFunc func(ctx context.Context, pnr model.PNR) (*model.StatusReport, error)
}

var _ adapter.StatusFetcher = (*MockFetcher)(nil)

func (m *MockFetcher) FetchStatus(ctx context.Context, pnr model.PNR) (*model.StatusReport, error) {
	atomic.AddInt32(&m.Calls, 1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, pnr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Report == nil {
		return nil, errors.New("mock fetcher: no report configured")
	}
	cp := *m.Report
	cp.Passengers = append([]model.PassengerStatus(nil), m.Report.Passengers...)
	return &cp, nil
}

func (m *MockFetcher) Serve(r *model.StatusReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Report, m.Err = r, nil
}

func (m *MockFetcher) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Report, m.Err = nil, err
}

// =============================
// Fixture
// =============================

type trackerFixture struct {
	repo     *memory.SessionRepo
	notifLog *memory.NotificationLogRepo
	sessions usecase.SessionUseCase
	fetcher  *MockFetcher
	bot      *MockNotifier
	tracker  usecase.TrackerUseCase
}

func newTrackerFixture(policy string) *trackerFixture {
	detector, err := usecase.NewChangeDetector(policy)
	if err != nil {
		panic(err)
	}
	f := &trackerFixture{
		repo:     memory.NewSessionRepo(),
		notifLog: memory.NewNotificationLogRepo(10),
		fetcher:  &MockFetcher{},
		bot:      &MockNotifier{},
	}
	f.sessions = usecase.NewSessionUseCase(f.repo, memory.TxManager{}, newTestLogger())
	f.tracker = usecase.NewTrackerUseCase(f.sessions, f.fetcher, f.bot, detector, f.notifLog,
		newTestTranslator(), usecase.TrackerOptions{}, newTestLogger())
	return f
}
