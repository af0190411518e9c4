package entity

import "time"

// Warehouse representa una bodega o taller donde se almacena inventario (multi-bodega).
// Inmutable para el ledger; Active indica si admite movimientos.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
