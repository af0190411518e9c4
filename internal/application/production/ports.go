package production

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta el cierre de producción dentro de una transacción de BD con
// los repositorios atados a esa tx. Mismas garantías que ledger.TxRunner:
// atomicidad, reintento acotado ante conflictos de serialización y
// domain.ErrConflict al agotarlos.
type TxRunner interface {
	RunProduction(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		orderRepo repository.ProductionOrderRepository,
		bomRepo repository.BOMRepository,
	) error) error
}
