package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBOMRequest body para POST /api/boms. Crea una versión nueva (inactiva
// salvo que sea la primera del producto).
type CreateBOMRequest struct {
	ProductID  string                `json:"product_id"`
	Components []BOMComponentRequest `json:"components"`
}

// BOMComponentRequest componente del BOM con cantidad por unidad producida.
type BOMComponentRequest struct {
	ComponentItemID string          `json:"component_item_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// BOMResponse representación de una versión de BOM.
type BOMResponse struct {
	ID         string                 `json:"id"`
	ProductID  string                 `json:"product_id"`
	Version    int                    `json:"version"`
	IsActive   bool                   `json:"is_active"`
	Components []BOMComponentResponse `json:"components"`
	CreatedAt  time.Time              `json:"created_at"`
}

// BOMComponentResponse componente en la respuesta.
type BOMComponentResponse struct {
	ComponentItemID string          `json:"component_item_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// CreateProductionOrderRequest body para POST /api/production-orders.
type CreateProductionOrderRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
}

// CompleteProductionOrderRequest body para POST /api/production-orders/:id/complete.
// ConsumedOverrides permite reportar consumos reales distintos al BOM;
// ProducedOverride reemplaza la cantidad planificada.
type CompleteProductionOrderRequest struct {
	ConsumedOverrides map[string]decimal.Decimal `json:"consumed_overrides,omitempty"`
	ProducedOverride  *decimal.Decimal           `json:"produced_override,omitempty"`
}

// ProductionOrderResponse representación de una orden de producción.
type ProductionOrderResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// CompletionResponse resultado del cierre de una orden de producción.
type CompletionResponse struct {
	OrderID     string          `json:"order_id"`
	IsCompleted bool            `json:"is_completed"`
	ProducedQty decimal.Decimal `json:"produced_qty"`
	Warnings    []string        `json:"warnings,omitempty"`
}
