package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeReceive     = "RECEIVE"      // entrada
	MovementTypeIssue       = "ISSUE"        // salida
	MovementTypeTransferOut = "TRANSFER_OUT" // salida por traslado
	MovementTypeTransferIn  = "TRANSFER_IN"  // entrada por traslado
	MovementTypeAdjustment  = "ADJUSTMENT"   // ajuste con signo
	MovementTypeConsume     = "CONSUME"      // consumo de componente (producción)
	MovementTypeProduce     = "PRODUCE"      // producto terminado (producción)
)

// Tipos de referencia para trazar el origen de un movimiento.
const (
	ReferenceTypeTransfer        = "Transfer"
	ReferenceTypeProductionOrder = "ProductionOrder"
)

// StockMovement representa un hecho inmutable del ledger: cada cambio de
// cantidad produce exactamente un registro (dos para traslados, uno por lado).
// Append-only: nunca se actualiza ni se borra. La suma de Quantity por
// (item, bodega) debe igualar el QuantityOnHand actual del nivel.
type StockMovement struct {
	ID             string
	TransactionID  string // correlación: los dos lados de un traslado comparten el mismo ID
	ItemID         string
	WarehouseID    string
	BinID          string
	Type           string
	Quantity       decimal.Decimal // cambio con signo: positivo entra, negativo sale
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitCost       decimal.Decimal
	ReferenceType  string // "Transfer", "ProductionOrder", etc.
	ReferenceID    string
	Reason         string
	Date           time.Time
	CreatedAt      time.Time
	CreatedBy      string // UserID del actor
}
