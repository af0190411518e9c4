package repository

import "github.com/jhoicas/Inventario-ledger/internal/domain/entity"

// BOMRepository define el puerto de persistencia para listas de materiales.
type BOMRepository interface {
	// Create guarda una versión nueva con sus componentes.
	Create(bom *entity.BillOfMaterials) error
	GetByID(id string) (*entity.BillOfMaterials, error)
	// GetActiveByProduct devuelve la única versión activa del producto o nil.
	GetActiveByProduct(productID string) (*entity.BillOfMaterials, error)
	ListByProduct(productID string) ([]*entity.BillOfMaterials, error)
	// Activate marca la versión como activa y desactiva las demás del producto.
	Activate(id string) error
}
