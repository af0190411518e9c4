package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOperationRequest body para POST /api/ledger/{receive|issue|adjust}.
// Quantity es el delta con signo en adjust; en receive/issue debe ser > 0.
type StockOperationRequest struct {
	ItemID      string           `json:"item_id"`
	WarehouseID string           `json:"warehouse_id"`
	BinID       string           `json:"bin_id,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"` // solo entradas
	Reason      string           `json:"reason,omitempty"`
}

// ReservationRequest body para POST /api/ledger/{reserve|release}.
type ReservationRequest struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	BinID       string          `json:"bin_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferRequest body para POST /api/ledger/transfer.
type TransferRequest struct {
	ItemID          string          `json:"item_id"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason,omitempty"`
}

// StockLevelResponse nivel de stock tras una operación o en consulta.
type StockLevelResponse struct {
	ItemID           string          `json:"item_id"`
	WarehouseID      string          `json:"warehouse_id"`
	BinID            string          `json:"bin_id,omitempty"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LastMovementAt   time.Time       `json:"last_movement_at"`
}

// OperationResponse resultado de una operación simple del ledger.
type OperationResponse struct {
	TransactionID string              `json:"transaction_id"`
	Levels        []StockLevelResponse `json:"levels"`
}

// MovementResponse un registro del ledger de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	ItemID         string          `json:"item_id"`
	WarehouseID    string          `json:"warehouse_id"`
	BinID          string          `json:"bin_id,omitempty"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Date           time.Time       `json:"date"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReconciliationResponse compara el nivel materializado contra la suma del ledger.
type ReconciliationResponse struct {
	ItemID         string          `json:"item_id"`
	WarehouseID    string          `json:"warehouse_id"`
	BinID          string          `json:"bin_id,omitempty"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	LedgerSum      decimal.Decimal `json:"ledger_sum"`
	Consistent     bool            `json:"consistent"`
}
