package adapter

import (
	"context"

	"pnr-tracker/internal/domain/model"
)

// StatusFetcher retrieves the current booking status of a PNR.
// It fails with *domain.FetchError and never returns an empty report.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, pnr model.PNR) (*model.StatusReport, error)
}
