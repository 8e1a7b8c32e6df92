package model

import (
	"regexp"
	"strings"

	"pnr-tracker/internal/domain"
)

var pnrPattern = regexp.MustCompile(`^\d{10}$`)

// PNR is a validated 10-digit Passenger Name Record number.
type PNR string

// ParsePNR trims surrounding whitespace and validates the 10-digit format.
func ParsePNR(raw string) (PNR, error) {
	s := strings.TrimSpace(raw)
	if !pnrPattern.MatchString(s) {
		return "", domain.ErrInvalidPNR
	}
	return PNR(s), nil
}

func (p PNR) String() string { return string(p) }

func (p PNR) IsZero() bool { return p == "" }
