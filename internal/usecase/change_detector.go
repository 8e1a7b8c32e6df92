package usecase

import (
	"fmt"
	"strings"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
)

const (
	PolicyText      = "text"
	PolicyPassenger = "passenger"
)

// ChangeDetector decides whether a fresh report warrants a notification.
// Implementations are pure: the result depends only on the two inputs.
type ChangeDetector interface {
	Name() string
	Detect(baseline model.Baseline, fresh *model.StatusReport) model.Change
}

// NewChangeDetector selects a policy by its configured name.
func NewChangeDetector(name string) (ChangeDetector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyText:
		return TextPolicy{}, nil
	case PolicyPassenger, "":
		return PassengerPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPolicy, name)
	}
}

// TextPolicy compares the full rendered report byte for byte.
// Cosmetic changes such as a platform number appearing count as changes.
type TextPolicy struct{}

func (TextPolicy) Name() string { return PolicyText }

func (TextPolicy) Detect(baseline model.Baseline, fresh *model.StatusReport) model.Change {
	if !baseline.Recorded || baseline.StatusText == "" {
		return model.Changed
	}
	if fresh.Text() != baseline.StatusText {
		return model.Changed
	}
	return model.Unchanged
}

// PassengerPolicy compares per-passenger current statuses positionally.
// Any difference in passenger count, growth or shrink, is a change.
type PassengerPolicy struct{}

func (PassengerPolicy) Name() string { return PolicyPassenger }

func (PassengerPolicy) Detect(baseline model.Baseline, fresh *model.StatusReport) model.Change {
	if !baseline.Recorded {
		return model.Changed
	}
	current := fresh.CurrentStatuses()
	if len(current) != len(baseline.PassengerStatuses) {
		return model.Changed
	}
	for i := range current {
		if current[i] != baseline.PassengerStatuses[i] {
			return model.Changed
		}
	}
	return model.Unchanged
}
