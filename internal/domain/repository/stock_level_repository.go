package repository

import "github.com/jhoicas/Inventario-ledger/internal/domain/entity"

// StockLevelRepository define el puerto para consultar/actualizar niveles de
// stock por item+bodega(+bin). Las operaciones mutantes del ledger lo usan
// siempre dentro de una transacción.
type StockLevelRepository interface {
	// Get devuelve el nivel o nil si no existe (sin crear).
	Get(itemID, warehouseID, binID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y devuelve nil si no existe.
	GetForUpdate(itemID, warehouseID, binID string) (*entity.StockLevel, error)
	// CreateIfMissing inserta la fila del nivel en cero si no existe todavía
	// (ON CONFLICT DO NOTHING); no modifica filas existentes. Permite crear
	// niveles de forma perezosa sin perder actualizaciones concurrentes: tras
	// insertarla, la fila se vuelve a bloquear con GetForUpdate.
	CreateIfMissing(itemID, warehouseID, binID string) error
	// Upsert inserta o actualiza el nivel completo.
	Upsert(level *entity.StockLevel) error
	// ListByWarehouse lista los niveles de una bodega (consulta, sin bloqueo).
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockLevel, error)
}
