package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de producción.
// Draft/InProgress -> Completed (terminal) | Cancelled (terminal, sin efecto en stock).
const (
	OrderStatusDraft      = "DRAFT"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// ProductionOrder representa una orden de producción sobre un producto con BOM.
// El ledger es el único escritor de StockLevel/StockMovement durante su cierre.
type ProductionOrder struct {
	ID           string
	CompanyID    string
	ProductID    string
	WarehouseID  string // taller/bodega donde se consume y se produce
	PlannedQty   decimal.Decimal
	Status       string
	Consumptions []Consumption
	Productions  []Production
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// CanComplete indica si la orden admite el cierre (no cancelada ni completada).
func (o *ProductionOrder) CanComplete() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusInProgress
}

// Consumption registra el consumo real de un componente al completar la orden.
type Consumption struct {
	ID              string
	OrderID         string
	ComponentItemID string
	Quantity        decimal.Decimal
	CreatedAt       time.Time
}

// Production registra la cantidad producida del producto terminado.
type Production struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	CreatedAt time.Time
}
