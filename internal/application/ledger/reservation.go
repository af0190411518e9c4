package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// ReservationInput entrada para reservar o liberar stock.
type ReservationInput struct {
	CompanyID   string
	UserID      string
	ItemID      string
	WarehouseID string
	BinID       string
	Quantity    decimal.Decimal
}

// Reserve promete cantidad contra un nivel sin mover stock en mano: no genera
// movimiento en el ledger, solo incrementa QuantityReserved. Falla con
// ErrInsufficientAvailability si la cantidad supera lo disponible.
func (uc *StockLedgerUseCase) Reserve(ctx context.Context, in ReservationInput) (*dto.OperationResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.loadCollaborators(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *dto.OperationResponse
	var events []event.Event

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, _ repository.StockMovementRepository) error {
		events = events[:0]
		level, err := lockOrCreateLevel(levelRepo, in.ItemID, in.WarehouseID, in.BinID)
		if err != nil {
			return err
		}
		if level.Available().LessThan(in.Quantity) {
			return domain.ErrInsufficientAvailability
		}
		level.QuantityReserved = level.QuantityReserved.Add(in.Quantity)
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		events = append(events, event.StockReserved{
			ItemID: in.ItemID, WarehouseID: in.WarehouseID,
			Quantity: in.Quantity, OccurredAt: now,
		})
		result = operationResponse(txID, level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, events)
	return result, nil
}

// Release libera cantidad reservada. Falla con ErrInvalidRelease si la
// cantidad supera lo reservado. Tampoco genera movimiento en el ledger.
func (uc *StockLedgerUseCase) Release(ctx context.Context, in ReservationInput) (*dto.OperationResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.loadCollaborators(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *dto.OperationResponse
	var events []event.Event

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, _ repository.StockMovementRepository) error {
		events = events[:0]
		level, err := levelRepo.GetForUpdate(in.ItemID, in.WarehouseID, in.BinID)
		if err != nil {
			return err
		}
		if level == nil || level.QuantityReserved.LessThan(in.Quantity) {
			return domain.ErrInvalidRelease
		}
		level.QuantityReserved = level.QuantityReserved.Sub(in.Quantity)
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		events = append(events, event.ReservationReleased{
			ItemID: in.ItemID, WarehouseID: in.WarehouseID,
			Quantity: in.Quantity, OccurredAt: now,
		})
		result = operationResponse(txID, level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, events)
	return result, nil
}
