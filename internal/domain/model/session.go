package model

import (
	"time"

	"pnr-tracker/internal/domain"
)

type Change int

const (
	Unchanged Change = iota
	Changed
)

func (c Change) String() string {
	if c == Changed {
		return "changed"
	}
	return "unchanged"
}

// Baseline is the last status observation a fresh fetch is compared against.
// A zero Baseline means no fetch has been recorded yet.
type Baseline struct {
	Recorded          bool
	StatusText        string
	PassengerStatuses []string
}

// Session tracks one PNR for one chat.
type Session struct {
	ChatID                int64
	PNR                   PNR
	LastStatusText        string
	LastPassengerStatuses []string
	HasBaseline           bool
	RegisteredAt          time.Time
	CheckedAt             time.Time
	UpdatedAt             time.Time
}

// NewSession starts tracking pnr for chatID with no baseline.
func NewSession(chatID int64, pnr PNR) (*Session, error) {
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if pnr.IsZero() {
		return nil, domain.ErrInvalidPNR
	}
	now := time.Now()
	return &Session{
		ChatID:       chatID,
		PNR:          pnr,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

func (s *Session) Baseline() Baseline {
	if s == nil || !s.HasBaseline {
		return Baseline{}
	}
	return Baseline{
		Recorded:          true,
		StatusText:        s.LastStatusText,
		PassengerStatuses: append([]string(nil), s.LastPassengerStatuses...),
	}
}

// Record overwrites the baseline unconditionally.
func (s *Session) Record(statusText string, passengerStatuses []string) {
	now := time.Now()
	s.LastStatusText = statusText
	s.LastPassengerStatuses = append([]string(nil), passengerStatuses...)
	s.HasBaseline = true
	s.CheckedAt = now
	s.UpdatedAt = now
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.LastPassengerStatuses = append([]string(nil), s.LastPassengerStatuses...)
	return &cp
}
