package model

import (
	"fmt"
	"strings"
)

type Probability string

const (
	ProbabilityHigh    Probability = "HIGH"
	ProbabilityMedium  Probability = "MEDIUM"
	ProbabilityLow     Probability = "LOW"
	ProbabilityUnknown Probability = "UNKNOWN"
)

// ParseProbability maps the confirmation-chance image source to a tier.
// HIGH is checked first, so a source naming several tiers resolves to the highest.
func ParseProbability(src string) Probability {
	switch {
	case strings.Contains(src, "HIGH"):
		return ProbabilityHigh
	case strings.Contains(src, "MEDIUM"):
		return ProbabilityMedium
	case strings.Contains(src, "LOW"):
		return ProbabilityLow
	default:
		return ProbabilityUnknown
	}
}

// PassengerStatus is one passenger row of a booking.
type PassengerStatus struct {
	BookingStatus string
	CurrentStatus string
	Probability   Probability
}

// StatusReport is the structured result of a single PNR status fetch.
type StatusReport struct {
	Train       string
	From        Stop
	To          Stop
	BoardingDay string
	Class       string
	Platform    string
	Passengers  []PassengerStatus
}

type Stop struct {
	Station string
	Time    string
}

// Lines renders the report as ordered display lines.
func (r *StatusReport) Lines() []string {
	if r == nil {
		return nil
	}
	lines := make([]string, 0, 7+len(r.Passengers))
	if r.Train != "" {
		lines = append(lines, "🚆 "+r.Train)
	}
	lines = append(lines,
		fmt.Sprintf("🛫 From: %s at %s", r.From.Station, r.From.Time),
		fmt.Sprintf("🛬 To: %s at %s", r.To.Station, r.To.Time),
		"📅 Day of Boarding: "+r.BoardingDay,
		"💺 Class: "+r.Class,
		"🛤️ Platform (Tentative): "+r.Platform,
	)
	if len(r.Passengers) > 0 {
		lines = append(lines, "\n📋 Passenger Booking Details:")
		for i, p := range r.Passengers {
			lines = append(lines, PassengerLine(i, p))
		}
	}
	return lines
}

// PassengerLine renders the display line of the i-th (zero based) passenger.
func PassengerLine(i int, p PassengerStatus) string {
	return fmt.Sprintf("👤 Passenger %d: %s → %s | 🟢 Probability: %s", i+1, p.BookingStatus, p.CurrentStatus, p.Probability)
}

// Text joins the display lines; this is the whole-text comparison key.
func (r *StatusReport) Text() string {
	return strings.Join(r.Lines(), "\n")
}

// CurrentStatuses returns each passenger's current status in order.
func (r *StatusReport) CurrentStatuses() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Passengers))
	for i, p := range r.Passengers {
		out[i] = p.CurrentStatus
	}
	return out
}

// IsEmpty reports whether the scrape produced nothing worth showing.
func (r *StatusReport) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Train == "" && r.From.Station == "" && r.To.Station == "" &&
		r.BoardingDay == "" && r.Class == "" && len(r.Passengers) == 0
}
