package ledger

import (
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// GetLevel consulta un nivel de stock sin bloqueo. Devuelve ErrNotFound si
// nunca hubo movimientos para la clave y ErrForbidden si el artículo o la
// bodega pertenecen a otra empresa.
func (uc *StockLedgerUseCase) GetLevel(companyID, itemID, warehouseID, binID string) (*dto.StockLevelResponse, error) {
	if err := uc.checkItemAccess(companyID, itemID); err != nil {
		return nil, err
	}
	if err := uc.checkWarehouseAccess(companyID, warehouseID); err != nil {
		return nil, err
	}
	level, err := uc.levelRepo.Get(itemID, warehouseID, binID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrNotFound
	}
	resp := toLevelResponse(level)
	return &resp, nil
}

// ListMovementsByItem lista el ledger de un artículo en un rango de fechas.
func (uc *StockLedgerUseCase) ListMovementsByItem(companyID, itemID string, from, to *time.Time, limit, offset int) (*dto.MovementListResponse, error) {
	if err := uc.checkItemAccess(companyID, itemID); err != nil {
		return nil, err
	}
	list, err := uc.movementRepo.ListByItem(itemID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementList(list, limit, offset), nil
}

// ListMovementsByWarehouse lista el ledger de una bodega en un rango de fechas.
func (uc *StockLedgerUseCase) ListMovementsByWarehouse(companyID, warehouseID string, from, to *time.Time, limit, offset int) (*dto.MovementListResponse, error) {
	if err := uc.checkWarehouseAccess(companyID, warehouseID); err != nil {
		return nil, err
	}
	list, err := uc.movementRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementList(list, limit, offset), nil
}

// checkItemAccess verifica que el artículo exista y pertenezca a la empresa.
// A diferencia de loadCollaborators no exige bodega activa: las consultas
// sobre bodegas desactivadas siguen siendo válidas para auditoría.
func (uc *StockLedgerUseCase) checkItemAccess(companyID, itemID string) error {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// checkWarehouseAccess verifica que la bodega exista y pertenezca a la empresa.
func (uc *StockLedgerUseCase) checkWarehouseAccess(companyID, warehouseID string) error {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// Reconcile compara el nivel materializado contra la suma de movimientos del
// ledger para la misma clave; deben coincidir siempre (ledger reproducible).
func (uc *StockLedgerUseCase) Reconcile(companyID, itemID, warehouseID, binID string) (*dto.ReconciliationResponse, error) {
	if err := uc.checkItemAccess(companyID, itemID); err != nil {
		return nil, err
	}
	if err := uc.checkWarehouseAccess(companyID, warehouseID); err != nil {
		return nil, err
	}
	level, err := uc.levelRepo.Get(itemID, warehouseID, binID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := uc.movementRepo.SumByKey(itemID, warehouseID, binID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconciliationResponse{
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		BinID:          binID,
		QuantityOnHand: level.QuantityOnHand,
		LedgerSum:      sum,
		Consistent:     level.QuantityOnHand.Equal(sum),
	}, nil
}

func toMovementList(list []*entity.StockMovement, limit, offset int) *dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		TransactionID:  m.TransactionID,
		ItemID:         m.ItemID,
		WarehouseID:    m.WarehouseID,
		BinID:          m.BinID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		Date:           m.Date,
		CreatedBy:      m.CreatedBy,
	}
}
