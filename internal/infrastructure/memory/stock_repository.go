package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.StockLevelRepository    = (*StockLevelRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockLevelRepo implementación en memoria del puerto de niveles de stock.
type StockLevelRepo struct {
	ses session
}

// NewStockLevelRepository construye el adaptador sobre el estado vivo del Store.
func NewStockLevelRepository(s *Store) *StockLevelRepo {
	return &StockLevelRepo{ses: liveSession(s)}
}

func (r *StockLevelRepo) Get(itemID, warehouseID, binID string) (*entity.StockLevel, error) {
	st, done := r.ses.read()
	defer done()
	lvl, ok := st.levels[levelKey(itemID, warehouseID, binID)]
	if !ok {
		return nil, nil
	}
	cp := *lvl
	return &cp, nil
}

// GetForUpdate equivale a Get: la transacción ya serializa el acceso.
func (r *StockLevelRepo) GetForUpdate(itemID, warehouseID, binID string) (*entity.StockLevel, error) {
	return r.Get(itemID, warehouseID, binID)
}

func (r *StockLevelRepo) CreateIfMissing(itemID, warehouseID, binID string) error {
	st, done := r.ses.write()
	defer done()
	key := levelKey(itemID, warehouseID, binID)
	if _, ok := st.levels[key]; ok {
		return nil
	}
	st.levels[key] = &entity.StockLevel{
		ItemID:           itemID,
		WarehouseID:      warehouseID,
		BinID:            binID,
		QuantityOnHand:   decimal.Zero,
		QuantityReserved: decimal.Zero,
		UnitCost:         decimal.Zero,
	}
	return nil
}

func (r *StockLevelRepo) Upsert(level *entity.StockLevel) error {
	st, done := r.ses.write()
	defer done()
	cp := *level
	st.levels[levelKey(level.ItemID, level.WarehouseID, level.BinID)] = &cp
	return nil
}

func (r *StockLevelRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockLevel, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.StockLevel
	for _, lvl := range st.levels {
		if lvl.WarehouseID != warehouseID {
			continue
		}
		cp := *lvl
		list = append(list, &cp)
	}
	sortLevels(list)
	return paginate(list, limit, offset), nil
}

// StockMovementRepo implementación en memoria del ledger de movimientos.
type StockMovementRepo struct {
	ses session
}

// NewStockMovementRepository construye el adaptador sobre el estado vivo del Store.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{ses: liveSession(s)}
}

func (r *StockMovementRepo) Append(movement *entity.StockMovement) error {
	st, done := r.ses.write()
	defer done()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	cp := *movement
	st.movements = append(st.movements, &cp)
	return nil
}

func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	st, done := r.ses.read()
	defer done()
	for _, m := range st.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *StockMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.ItemID == itemID }, from, to, limit, offset)
}

func (r *StockMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.WarehouseID == warehouseID }, from, to, limit, offset)
}

func (r *StockMovementRepo) list(match func(*entity.StockMovement) bool, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	st, done := r.ses.read()
	defer done()
	var list []*entity.StockMovement
	// Los movimientos ya están en orden de anexado; se recorre al revés para
	// devolver los más recientes primero, como el adaptador de PostgreSQL.
	for i := len(st.movements) - 1; i >= 0; i-- {
		m := st.movements[i]
		if !match(m) {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	return paginate(list, limit, offset), nil
}

func (r *StockMovementRepo) SumByKey(itemID, warehouseID, binID string) (decimal.Decimal, error) {
	st, done := r.ses.read()
	defer done()
	sum := decimal.Zero
	for _, m := range st.movements {
		if m.ItemID == itemID && m.WarehouseID == warehouseID && m.BinID == binID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func sortLevels(list []*entity.StockLevel) {
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
