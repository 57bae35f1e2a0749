package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool          *pgxpool.Pool
	lockTimeoutMs int
}

// NewTxRunner construye el runner. lockTimeoutMs > 0 acota la espera por cada SELECT ... FOR UPDATE.
func NewTxRunner(pool *pgxpool.Pool, lockTimeoutMs int) *TxRunner {
	return &TxRunner{pool: pool, lockTimeoutMs: lockTimeoutMs}
}

// Repos repositorios sobre el pool, fuera de transacción.
func Repos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Products:   NewProductRepository(q),
		Locations:  NewLocationRepository(q),
		Stock:      NewLocationInventoryRepository(q),
		Activities: NewActivityRepository(q),
		Transfers:  NewTransferRepository(q),
		Sales:      NewSaleRepository(q),
		Invoices:   NewInvoiceRepository(q),
		Placements: NewPlacementRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapTxError(ctx, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.lockTimeoutMs > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMs)); err != nil {
			return mapTxError(ctx, fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	if err := fn(ctx, Repos(tx)); err != nil {
		return mapTxError(ctx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError(ctx, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
