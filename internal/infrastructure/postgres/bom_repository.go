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

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo implementación de BOMRepository sobre PostgreSQL (usable con pool o tx).
// Tablas boms y bom_components; un índice único parcial sobre
// (product_id) WHERE is_active garantiza a lo sumo una versión activa.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// Create guarda una versión nueva con sus componentes.
func (r *BOMRepo) Create(bom *entity.BillOfMaterials) error {
	if bom.ID == "" {
		bom.ID = uuid.New().String()
	}
	query := `
		INSERT INTO boms (id, company_id, product_id, version, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		bom.ID, bom.CompanyID, bom.ProductID, bom.Version, bom.IsActive,
		bom.CreatedAt, bom.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create bom: %w", err)
	}
	for i := range bom.Components {
		c := &bom.Components[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.BOMID = bom.ID
		query := `
			INSERT INTO bom_components (id, bom_id, component_item_id, quantity_per_unit)
			VALUES ($1, $2, $3, $4)`
		if _, err := r.q.Exec(context.Background(), query,
			c.ID, c.BOMID, c.ComponentItemID, c.QuantityPerUnit); err != nil {
			return fmt.Errorf("create bom component: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una versión por ID con sus componentes; nil si no existe.
func (r *BOMRepo) GetByID(id string) (*entity.BillOfMaterials, error) {
	query := `
		SELECT id, company_id, product_id, version, is_active, created_at, updated_at
		FROM boms WHERE id = $1`
	return r.scanOne(query, id)
}

// GetActiveByProduct devuelve la única versión activa del producto o nil.
func (r *BOMRepo) GetActiveByProduct(productID string) (*entity.BillOfMaterials, error) {
	query := `
		SELECT id, company_id, product_id, version, is_active, created_at, updated_at
		FROM boms WHERE product_id = $1 AND is_active`
	return r.scanOne(query, productID)
}

func (r *BOMRepo) scanOne(query string, args ...any) (*entity.BillOfMaterials, error) {
	var b entity.BillOfMaterials
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&b.ID, &b.CompanyID, &b.ProductID, &b.Version, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}
	if err := r.loadComponents(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BOMRepo) loadComponents(b *entity.BillOfMaterials) error {
	query := `
		SELECT id, bom_id, component_item_id, quantity_per_unit
		FROM bom_components WHERE bom_id = $1 ORDER BY component_item_id`
	rows, err := r.q.Query(context.Background(), query, b.ID)
	if err != nil {
		return fmt.Errorf("list bom components: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.BOMComponent
		if err := rows.Scan(&c.ID, &c.BOMID, &c.ComponentItemID, &c.QuantityPerUnit); err != nil {
			return fmt.Errorf("scan bom component: %w", err)
		}
		b.Components = append(b.Components, c)
	}
	return rows.Err()
}

// ListByProduct lista todas las versiones del producto (sin componentes).
func (r *BOMRepo) ListByProduct(productID string) ([]*entity.BillOfMaterials, error) {
	query := `
		SELECT id, company_id, product_id, version, is_active, created_at, updated_at
		FROM boms WHERE product_id = $1 ORDER BY version`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	defer rows.Close()
	var list []*entity.BillOfMaterials
	for rows.Next() {
		var b entity.BillOfMaterials
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.Version, &b.IsActive,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Activate marca la versión como activa desactivando las demás del producto,
// en dos pasos dentro de la misma conexión/tx del Querier.
func (r *BOMRepo) Activate(id string) error {
	ctx := context.Background()
	deactivate := `
		UPDATE boms SET is_active = false, updated_at = now()
		WHERE product_id = (SELECT product_id FROM boms WHERE id = $1) AND is_active`
	if _, err := r.q.Exec(ctx, deactivate, id); err != nil {
		return fmt.Errorf("deactivate boms: %w", err)
	}
	activate := `UPDATE boms SET is_active = true, updated_at = now() WHERE id = $1`
	if _, err := r.q.Exec(ctx, activate, id); err != nil {
		return fmt.Errorf("activate bom: %w", err)
	}
	return nil
}
