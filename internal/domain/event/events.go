package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de eventos de dominio (también usados como ce-type al publicar).
const (
	NameStockReceived       = "ledger.stock.received"
	NameStockIssued         = "ledger.stock.issued"
	NameStockAdjusted       = "ledger.stock.adjusted"
	NameStockTransferred    = "ledger.stock.transferred"
	NameStockReserved       = "ledger.stock.reserved"
	NameReservationReleased = "ledger.stock.reservation_released"
	NameProductionCompleted = "ledger.production.completed"
)

// Event es un hecho de dominio emitido por el ledger. Los casos de uso los
// acumulan durante la transacción y el publisher los despacha después del
// commit; un fallo de publicación nunca revierte la transacción.
type Event interface {
	Name() string
	Key() string // clave de partición (item o orden)
}

// StockReceived entrada de stock registrada.
type StockReceived struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (StockReceived) Name() string  { return NameStockReceived }
func (e StockReceived) Key() string { return e.ItemID }

// StockIssued salida de stock registrada.
type StockIssued struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (StockIssued) Name() string  { return NameStockIssued }
func (e StockIssued) Key() string { return e.ItemID }

// StockAdjusted ajuste con signo aplicado.
type StockAdjusted struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (StockAdjusted) Name() string  { return NameStockAdjusted }
func (e StockAdjusted) Key() string { return e.ItemID }

// StockTransferred traslado entre bodegas completado (ambos lados).
type StockTransferred struct {
	TransferID      string          `json:"transfer_id"`
	ItemID          string          `json:"item_id"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func (StockTransferred) Name() string  { return NameStockTransferred }
func (e StockTransferred) Key() string { return e.ItemID }

// StockReserved cantidad prometida contra un nivel (no cambia el stock en mano).
type StockReserved struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (StockReserved) Name() string  { return NameStockReserved }
func (e StockReserved) Key() string { return e.ItemID }

// ReservationReleased reserva liberada total o parcialmente.
type ReservationReleased struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (ReservationReleased) Name() string  { return NameReservationReleased }
func (e ReservationReleased) Key() string { return e.ItemID }

// ProductionCompleted orden de producción cerrada: componentes consumidos y
// producto terminado ingresado.
type ProductionCompleted struct {
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	ProducedQty decimal.Decimal `json:"produced_qty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (ProductionCompleted) Name() string  { return NameProductionCompleted }
func (e ProductionCompleted) Key() string { return e.OrderID }
