package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL
// (usable con pool o tx). La tabla stock_levels tiene clave única
// (item_id, warehouse_id, bin_id) y un CHECK de no-negatividad que respalda
// el invariante como última línea de defensa.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockLevelColumns = `item_id, warehouse_id, bin_id, quantity_on_hand, quantity_reserved, unit_cost, last_movement_at`

// Get obtiene el nivel o nil si no existe.
func (r *StockLevelRepo) Get(itemID, warehouseID, binID string) (*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels WHERE item_id = $1 AND warehouse_id = $2 AND bin_id = $3`
	return r.scanOne(query, itemID, warehouseID, binID)
}

// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE); nil si no existe.
func (r *StockLevelRepo) GetForUpdate(itemID, warehouseID, binID string) (*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels WHERE item_id = $1 AND warehouse_id = $2 AND bin_id = $3
		FOR UPDATE`
	return r.scanOne(query, itemID, warehouseID, binID)
}

func (r *StockLevelRepo) scanOne(query string, args ...any) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.ItemID, &s.WarehouseID, &s.BinID,
		&s.QuantityOnHand, &s.QuantityReserved, &s.UnitCost, &s.LastMovementAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// CreateIfMissing inserta la fila en cero si no existe. Con ON CONFLICT DO
// NOTHING dos transacciones que crean la misma clave no se pisan: la segunda
// espera el commit de la primera, no inserta nada y el GetForUpdate posterior
// lee y bloquea la fila ya confirmada.
func (r *StockLevelRepo) CreateIfMissing(itemID, warehouseID, binID string) error {
	query := `
		INSERT INTO stock_levels (item_id, warehouse_id, bin_id, quantity_on_hand, quantity_reserved, unit_cost, last_movement_at)
		VALUES ($1, $2, $3, 0, 0, 0, NOW())
		ON CONFLICT (item_id, warehouse_id, bin_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), query, itemID, warehouseID, binID); err != nil {
		return fmt.Errorf("create stock level: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza el nivel completo (por item, bodega y bin).
func (r *StockLevelRepo) Upsert(level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (item_id, warehouse_id, bin_id, quantity_on_hand, quantity_reserved, unit_cost, last_movement_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id, warehouse_id, bin_id)
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand,
		              quantity_reserved = EXCLUDED.quantity_reserved,
		              unit_cost = EXCLUDED.unit_cost,
		              last_movement_at = EXCLUDED.last_movement_at`
	_, err := r.q.Exec(context.Background(), query,
		level.ItemID, level.WarehouseID, level.BinID,
		level.QuantityOnHand, level.QuantityReserved, level.UnitCost, level.LastMovementAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}

// ListByWarehouse lista los niveles de una bodega (sin bloqueo).
func (r *StockLevelRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels WHERE warehouse_id = $1
		ORDER BY item_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ItemID, &s.WarehouseID, &s.BinID,
			&s.QuantityOnHand, &s.QuantityReserved, &s.UnitCost, &s.LastMovementAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
