package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository      = (*ItemRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ItemRepo implementación en memoria del puerto de artículos.
type ItemRepo struct {
	ses session
}

func NewItemRepository(s *Store) *ItemRepo {
	return &ItemRepo{ses: liveSession(s)}
}

func (r *ItemRepo) Create(item *entity.Item) error {
	st, done := r.ses.write()
	defer done()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	for _, it := range st.items {
		if it.CompanyID == item.CompanyID && it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	st.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	st, done := r.ses.read()
	defer done()
	it, ok := st.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) GetBySKU(companyID, sku string) (*entity.Item, error) {
	st, done := r.ses.read()
	defer done()
	for _, it := range st.items {
		if it.CompanyID == companyID && it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Item, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.Item
	for _, it := range st.items {
		if it.CompanyID == companyID {
			cp := *it
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, limit, offset), nil
}

// WarehouseRepo implementación en memoria del puerto de bodegas.
type WarehouseRepo struct {
	ses session
}

func NewWarehouseRepository(s *Store) *WarehouseRepo {
	return &WarehouseRepo{ses: liveSession(s)}
}

func (r *WarehouseRepo) Create(warehouse *entity.Warehouse) error {
	st, done := r.ses.write()
	defer done()
	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}
	cp := *warehouse
	st.warehouses[warehouse.ID] = &cp
	return nil
}

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	st, done := r.ses.read()
	defer done()
	w, ok := st.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *WarehouseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.Warehouse
	for _, w := range st.warehouses {
		if w.CompanyID == companyID {
			cp := *w
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}
