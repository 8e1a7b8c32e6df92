package memory

import (
	"context"

	"github.com/jackc/pgx/v4"

	"pnr-tracker/internal/domain/ports/repository"
)

var _ repository.TransactionManager = TxManager{}

// TxManager runs fn directly; the memory repositories are individually synchronized.
type TxManager struct{}

func (TxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
