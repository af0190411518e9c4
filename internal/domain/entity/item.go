package entity

import "time"

// Item representa un artículo o SKU del inventario. Inmutable para el ledger:
// el motor de movimientos solo lo consulta, nunca lo modifica.
type Item struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	UnitMeasure string // unidad de medida (UND, KG, LT, ...)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
