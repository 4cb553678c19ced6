package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must accept NoTX and fall back to their non-transactional path.
type Tx interface{}

// NoTX marks a repository call that runs outside any transaction.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the transaction handle to repositories via tx. Keeps use-case
// interfaces clean of storage-specific transaction types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
