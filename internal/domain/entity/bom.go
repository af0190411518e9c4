package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillOfMaterials representa la lista de materiales de un producto, versionada.
// Por producto hay a lo sumo una versión con IsActive=true; activar una versión
// desactiva la anterior.
type BillOfMaterials struct {
	ID         string
	CompanyID  string
	ProductID  string
	Version    int
	IsActive   bool
	Components []BOMComponent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BOMComponent representa un componente del BOM con su cantidad por unidad producida.
type BOMComponent struct {
	ID              string
	BOMID           string
	ComponentItemID string
	QuantityPerUnit decimal.Decimal
}
