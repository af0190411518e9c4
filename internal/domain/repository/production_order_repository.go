package repository

import "github.com/jhoicas/Inventario-ledger/internal/domain/entity"

// ProductionOrderRepository define el puerto de persistencia para órdenes de producción.
type ProductionOrderRepository interface {
	Create(order *entity.ProductionOrder) error
	// GetByID carga la orden con sus consumos/producciones; nil si no existe.
	GetByID(id string) (*entity.ProductionOrder, error)
	// GetByIDForUpdate bloquea la fila de la orden para el cierre.
	GetByIDForUpdate(id string) (*entity.ProductionOrder, error)
	UpdateStatus(order *entity.ProductionOrder) error
	AddConsumption(consumption *entity.Consumption) error
	AddProduction(production *entity.Production) error
	ListByCompany(companyID string, status string, limit, offset int) ([]*entity.ProductionOrder, error)
}
