package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.BOMRepository             = (*BOMRepo)(nil)
	_ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)
)

// BOMRepo implementación en memoria del puerto de listas de materiales.
type BOMRepo struct {
	ses session
}

func NewBOMRepository(s *Store) *BOMRepo {
	return &BOMRepo{ses: liveSession(s)}
}

func (r *BOMRepo) Create(bom *entity.BillOfMaterials) error {
	st, done := r.ses.write()
	defer done()
	if bom.ID == "" {
		bom.ID = uuid.New().String()
	}
	cp := *bom
	cp.Components = append([]entity.BOMComponent(nil), bom.Components...)
	st.boms[bom.ID] = &cp
	return nil
}

func (r *BOMRepo) GetByID(id string) (*entity.BillOfMaterials, error) {
	st, done := r.ses.read()
	defer done()
	b, ok := st.boms[id]
	if !ok {
		return nil, nil
	}
	return copyBOM(b), nil
}

func (r *BOMRepo) GetActiveByProduct(productID string) (*entity.BillOfMaterials, error) {
	st, done := r.ses.read()
	defer done()
	for _, b := range st.boms {
		if b.ProductID == productID && b.IsActive {
			return copyBOM(b), nil
		}
	}
	return nil, nil
}

func (r *BOMRepo) ListByProduct(productID string) ([]*entity.BillOfMaterials, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.BillOfMaterials
	for _, b := range st.boms {
		if b.ProductID == productID {
			list = append(list, copyBOM(b))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version < list[j].Version })
	return list, nil
}

func (r *BOMRepo) Activate(id string) error {
	st, done := r.ses.write()
	defer done()
	target, ok := st.boms[id]
	if !ok {
		return nil
	}
	for _, b := range st.boms {
		if b.ProductID == target.ProductID {
			b.IsActive = b.ID == id
		}
	}
	return nil
}

func copyBOM(b *entity.BillOfMaterials) *entity.BillOfMaterials {
	cp := *b
	cp.Components = append([]entity.BOMComponent(nil), b.Components...)
	return &cp
}

// ProductionOrderRepo implementación en memoria del puerto de órdenes de producción.
type ProductionOrderRepo struct {
	ses session
}

func NewProductionOrderRepository(s *Store) *ProductionOrderRepo {
	return &ProductionOrderRepo{ses: liveSession(s)}
}

func (r *ProductionOrderRepo) Create(order *entity.ProductionOrder) error {
	st, done := r.ses.write()
	defer done()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	st.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *ProductionOrderRepo) GetByID(id string) (*entity.ProductionOrder, error) {
	st, done := r.ses.read()
	defer done()
	o, ok := st.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

// GetByIDForUpdate equivale a GetByID: la transacción ya serializa el acceso.
func (r *ProductionOrderRepo) GetByIDForUpdate(id string) (*entity.ProductionOrder, error) {
	return r.GetByID(id)
}

func (r *ProductionOrderRepo) UpdateStatus(order *entity.ProductionOrder) error {
	st, done := r.ses.write()
	defer done()
	o, ok := st.orders[order.ID]
	if !ok {
		return nil
	}
	o.Status = order.Status
	o.UpdatedAt = order.UpdatedAt
	o.CompletedAt = order.CompletedAt
	return nil
}

func (r *ProductionOrderRepo) AddConsumption(c *entity.Consumption) error {
	st, done := r.ses.write()
	defer done()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	o, ok := st.orders[c.OrderID]
	if !ok {
		return nil
	}
	o.Consumptions = append(o.Consumptions, *c)
	return nil
}

func (r *ProductionOrderRepo) AddProduction(p *entity.Production) error {
	st, done := r.ses.write()
	defer done()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	o, ok := st.orders[p.OrderID]
	if !ok {
		return nil
	}
	o.Productions = append(o.Productions, *p)
	return nil
}

func (r *ProductionOrderRepo) ListByCompany(companyID string, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.ProductionOrder
	for _, o := range st.orders {
		if o.CompanyID != companyID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		list = append(list, copyOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func copyOrder(o *entity.ProductionOrder) *entity.ProductionOrder {
	cp := *o
	cp.Consumptions = append([]entity.Consumption(nil), o.Consumptions...)
	cp.Productions = append([]entity.Production(nil), o.Productions...)
	return &cp
}
