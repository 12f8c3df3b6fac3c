package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor opens the unit of work for every ledger operation.
type Transactor struct {
	pool Pool
	opts pgx.TxOptions
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite},
	}
}

// Begin starts a READ COMMITTED transaction. Wallet rows are serialized with
// explicit FOR UPDATE locks taken in user-id order, not by the isolation level.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.BeginTx(ctx, t.opts)
}
