package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa la cantidad actual de un artículo en una bodega
// (clave: item + bodega + bin opcional). Se crea perezosamente con el primer
// movimiento de entrada; nunca se borra, solo se deja en cero.
// Invariantes: QuantityOnHand >= 0 y QuantityReserved <= QuantityOnHand.
type StockLevel struct {
	ItemID           string
	WarehouseID      string
	BinID            string // opcional; "" = sin bin
	QuantityOnHand   decimal.Decimal
	QuantityReserved decimal.Decimal
	UnitCost         decimal.Decimal // costo promedio ponderado
	LastMovementAt   time.Time
}

// Available devuelve la cantidad disponible: en mano menos reservada.
func (s *StockLevel) Available() decimal.Decimal {
	return s.QuantityOnHand.Sub(s.QuantityReserved)
}
