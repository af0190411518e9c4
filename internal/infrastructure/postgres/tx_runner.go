package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/production"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and production.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ production.TxRunner = (*TxRunner)(nil)

// Intentos por operación ante fallos de serialización o deadlock.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// aislamiento read-committed y bloqueo de filas (SELECT FOR UPDATE en los
// repositorios). Reintenta hasta maxTxAttempts ante 40001/40P01; agotados los
// reintentos devuelve domain.ErrConflict.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con repos del ledger y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewStockLevelRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunProduction inicia una transacción con los repos del cierre de producción.
func (r *TxRunner) RunProduction(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	orderRepo repository.ProductionOrderRepository,
	bomRepo repository.BOMRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(
			NewStockLevelRepository(tx),
			NewStockMovementRepository(tx),
			NewProductionOrderRepository(tx),
			NewBOMRepository(tx),
		)
	})
}

// withRetry ejecuta fn en una transacción nueva por intento. fn debe recalcular
// todo desde sus lecturas: puede ejecutarse más de una vez.
func (r *TxRunner) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return retryTx(ctx, func() error { return r.runOnce(ctx, fn) })
}

// retryTx reintenta run hasta maxTxAttempts mientras el error sea de
// serialización o deadlock (40001/40P01); agotados los intentos devuelve
// domain.ErrConflict con el último error. Cualquier otro error corta de
// inmediato.
func retryTx(ctx context.Context, run func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := run()
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
