package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto del ledger de movimientos.
// Append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Append(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// SumByKey suma Quantity de todos los movimientos de (item, bodega, bin);
	// debe igualar el QuantityOnHand del nivel (reconciliación del ledger).
	SumByKey(itemID, warehouseID, binID string) (decimal.Decimal, error)
}
