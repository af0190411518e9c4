package memory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/production"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ ledger.TxRunner     = (*TxRunner)(nil)
	_ production.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta transacciones sobre el Store: toma el mutex en exclusiva,
// corre fn sobre un clon del estado y lo intercambia al confirmar. Si fn
// falla, el clon se descarta (rollback). Al serializar con el mutex no hay
// conflictos de serialización, así que nunca reintenta.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el ejecutor de transacciones en memoria.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (t *TxRunner) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return t.runOnce(ctx, func(st *state) error {
		return fn(
			&StockLevelRepo{ses: txSession(st)},
			&StockMovementRepo{ses: txSession(st)},
		)
	})
}

func (t *TxRunner) RunProduction(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	orderRepo repository.ProductionOrderRepository,
	bomRepo repository.BOMRepository,
) error) error {
	return t.runOnce(ctx, func(st *state) error {
		return fn(
			&StockLevelRepo{ses: txSession(st)},
			&StockMovementRepo{ses: txSession(st)},
			&ProductionOrderRepo{ses: txSession(st)},
			&BOMRepo{ses: txSession(st)},
		)
	})
}

func (t *TxRunner) runOnce(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	clone := t.s.st.clone()
	if err := fn(clone); err != nil {
		return err
	}
	t.s.st = clone
	return nil
}
