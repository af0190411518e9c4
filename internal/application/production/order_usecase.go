package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// OrderUseCase ciclo de vida de órdenes de producción fuera del cierre:
// crear (DRAFT), iniciar (IN_PROGRESS) y cancelar (terminal, sin efecto en stock).
type OrderUseCase struct {
	txRunner      TxRunner
	orderRepo     repository.ProductionOrderRepository
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.ProductionOrderRepository,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:      txRunner,
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// Create crea una orden en estado DRAFT validando producto y bodega.
func (uc *OrderUseCase) Create(companyID, userID string, in dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error) {
	if in.ProductID == "" || in.WarehouseID == "" || !in.PlannedQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(in.ProductID)
	if err != nil || item == nil {
		return nil, domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	wh, _ := uc.warehouseRepo.GetByID(in.WarehouseID)
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !wh.Active {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	order := &entity.ProductionOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		PlannedQty:  in.PlannedQty,
		Status:      entity.OrderStatusDraft,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Start transiciona DRAFT -> IN_PROGRESS.
func (uc *OrderUseCase) Start(ctx context.Context, companyID, orderID string) (*dto.ProductionOrderResponse, error) {
	return uc.transition(ctx, companyID, orderID, func(order *entity.ProductionOrder) error {
		if order.Status != entity.OrderStatusDraft {
			return domain.ErrInvalidState
		}
		order.Status = entity.OrderStatusInProgress
		return nil
	})
}

// Cancel transiciona DRAFT/IN_PROGRESS -> CANCELLED. Cancelar una orden
// completada o volver a cancelar falla con ErrInvalidState.
func (uc *OrderUseCase) Cancel(ctx context.Context, companyID, orderID string) (*dto.ProductionOrderResponse, error) {
	return uc.transition(ctx, companyID, orderID, func(order *entity.ProductionOrder) error {
		if !order.CanComplete() {
			return domain.ErrInvalidState
		}
		order.Status = entity.OrderStatusCancelled
		return nil
	})
}

// transition aplica un cambio de estado con la fila de la orden bloqueada.
func (uc *OrderUseCase) transition(ctx context.Context, companyID, orderID string, apply func(*entity.ProductionOrder) error) (*dto.ProductionOrderResponse, error) {
	var result *dto.ProductionOrderResponse
	err := uc.txRunner.RunProduction(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		orderRepo repository.ProductionOrderRepository,
		_ repository.BOMRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if err := apply(order); err != nil {
			return err
		}
		order.UpdatedAt = time.Now()
		if err := orderRepo.UpdateStatus(order); err != nil {
			return err
		}
		result = toOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID obtiene una orden por ID (con chequeo de empresa).
func (uc *OrderUseCase) GetByID(companyID, orderID string) (*dto.ProductionOrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toOrderResponse(order), nil
}

// List lista órdenes por empresa, opcionalmente filtradas por estado.
func (uc *OrderUseCase) List(companyID, status string, limit, offset int) ([]dto.ProductionOrderResponse, error) {
	list, err := uc.orderRepo.ListByCompany(companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductionOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return items, nil
}

func toOrderResponse(o *entity.ProductionOrder) *dto.ProductionOrderResponse {
	return &dto.ProductionOrderResponse{
		ID:          o.ID,
		ProductID:   o.ProductID,
		WarehouseID: o.WarehouseID,
		PlannedQty:  o.PlannedQty,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
	}
}
