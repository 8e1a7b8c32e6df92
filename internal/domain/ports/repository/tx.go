package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres, nil for memory).
// Repositories must accept a nil Tx and fall back to their non-transactional path.
type Tx interface{}

var NoTX Tx

// TransactionManager runs fn inside a storage transaction and commits when fn returns nil.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
