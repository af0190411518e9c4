package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo implementación sobre PostgreSQL (usable con pool o tx).
// Tablas production_orders, production_consumptions y production_outputs.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

const orderColumns = `id, company_id, product_id, warehouse_id, planned_qty, status, created_by, created_at, updated_at, completed_at`

// Create persiste una orden nueva.
func (r *ProductionOrderRepo) Create(order *entity.ProductionOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	query := `
		INSERT INTO production_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CompanyID, order.ProductID, order.WarehouseID,
		order.PlannedQty, order.Status, order.CreatedBy,
		order.CreatedAt, order.UpdatedAt, order.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create production order: %w", err)
	}
	return nil
}

// GetByID carga la orden con sus consumos/producciones; nil si no existe.
func (r *ProductionOrderRepo) GetByID(id string) (*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para el cierre.
func (r *ProductionOrderRepo) GetByIDForUpdate(id string) (*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

func (r *ProductionOrderRepo) scanOne(query string, args ...any) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&o.ID, &o.CompanyID, &o.ProductID, &o.WarehouseID,
		&o.PlannedQty, &o.Status, &o.CreatedBy,
		&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production order: %w", err)
	}
	if err := r.loadChildren(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ProductionOrderRepo) loadChildren(o *entity.ProductionOrder) error {
	ctx := context.Background()
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, component_item_id, quantity, created_at
		FROM production_consumptions WHERE order_id = $1 ORDER BY component_item_id`, o.ID)
	if err != nil {
		return fmt.Errorf("list consumptions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.Consumption
		if err := rows.Scan(&c.ID, &c.OrderID, &c.ComponentItemID, &c.Quantity, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan consumption: %w", err)
		}
		o.Consumptions = append(o.Consumptions, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, created_at
		FROM production_outputs WHERE order_id = $1`, o.ID)
	if err != nil {
		return fmt.Errorf("list productions: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p entity.Production
		if err := prows.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.Quantity, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan production: %w", err)
		}
		o.Productions = append(o.Productions, p)
	}
	return prows.Err()
}

// UpdateStatus actualiza estado y marcas de tiempo de la orden.
func (r *ProductionOrderRepo) UpdateStatus(order *entity.ProductionOrder) error {
	query := `
		UPDATE production_orders
		SET status = $2, updated_at = $3, completed_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.UpdatedAt, order.CompletedAt)
	if err != nil {
		return fmt.Errorf("update production order: %w", err)
	}
	return nil
}

// AddConsumption agrega un registro de consumo de componente.
func (r *ProductionOrderRepo) AddConsumption(c *entity.Consumption) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO production_consumptions (id, order_id, component_item_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, c.ID, c.OrderID, c.ComponentItemID, c.Quantity, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("add consumption: %w", err)
	}
	return nil
}

// AddProduction agrega un registro de producto terminado.
func (r *ProductionOrderRepo) AddProduction(p *entity.Production) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO production_outputs (id, order_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.OrderID, p.ProductID, p.Quantity, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("add production: %w", err)
	}
	return nil
}

// ListByCompany lista órdenes por empresa, opcionalmente por estado.
func (r *ProductionOrderRepo) ListByCompany(companyID string, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionOrder
	for rows.Next() {
		var o entity.ProductionOrder
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.ProductID, &o.WarehouseID,
			&o.PlannedQty, &o.Status, &o.CreatedBy,
			&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan production order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
