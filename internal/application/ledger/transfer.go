package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TransferInput entrada para un traslado entre bodegas.
type TransferInput struct {
	CompanyID       string
	UserID          string
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	Reason          string
}

// Transfer mueve stock entre dos bodegas como una sola unidad atómica:
// dos niveles y dos movimientos (TRANSFER_OUT/TRANSFER_IN) con el mismo ID de
// correlación se escriben en la misma transacción, o ninguno. Las filas se
// bloquean siempre en orden ascendente de bodega para evitar deadlocks entre
// traslados concurrentes en sentidos opuestos. La cantidad se valida contra lo
// disponible (en mano menos reservado); el límite es inclusivo. El lado
// receptor hereda el costo unitario del origen.
func (uc *StockLedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*dto.OperationResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.loadCollaborators(in.CompanyID, in.ItemID, in.FromWarehouseID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	transferID := uuid.New().String()
	var result *dto.OperationResponse
	var events []event.Event

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movRepo repository.StockMovementRepository) error {
		events = events[:0]
		source, dest, err := lockTransferPair(levelRepo, in.ItemID, in.FromWarehouseID, in.ToWarehouseID)
		if err != nil {
			return err
		}
		if source.Available().LessThan(in.Quantity) {
			return domain.ErrInsufficientStock
		}

		sourceBefore := source.QuantityOnHand
		destBefore := dest.QuantityOnHand
		source.QuantityOnHand = source.QuantityOnHand.Sub(in.Quantity)
		dest.QuantityOnHand = dest.QuantityOnHand.Add(in.Quantity)
		dest.UnitCost = source.UnitCost // el destino hereda el costo del origen
		source.LastMovementAt = now
		dest.LastMovementAt = now

		if err := levelRepo.Upsert(source); err != nil {
			return err
		}
		if err := levelRepo.Upsert(dest); err != nil {
			return err
		}
		outMov := newMovement(transferID, source, entity.MovementTypeTransferOut, in.Quantity.Neg(), sourceBefore,
			entity.ReferenceTypeTransfer, transferID, in.Reason, in.UserID, now)
		if err := movRepo.Append(outMov); err != nil {
			return err
		}
		inMov := newMovement(transferID, dest, entity.MovementTypeTransferIn, in.Quantity, destBefore,
			entity.ReferenceTypeTransfer, transferID, in.Reason, in.UserID, now)
		if err := movRepo.Append(inMov); err != nil {
			return err
		}
		events = append(events, event.StockTransferred{
			TransferID: transferID, ItemID: in.ItemID,
			FromWarehouseID: in.FromWarehouseID, ToWarehouseID: in.ToWarehouseID,
			Quantity: in.Quantity, OccurredAt: now,
		})
		result = operationResponse(transferID, source, dest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, events)
	return result, nil
}

// lockTransferPair bloquea los dos niveles del traslado en orden ascendente de
// bodega y devuelve (origen, destino). El destino se crea en cero si no existe;
// el origen inexistente equivale a disponibilidad cero.
func lockTransferPair(levelRepo repository.StockLevelRepository, itemID, fromID, toID string) (*entity.StockLevel, *entity.StockLevel, error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	firstLevel, err := lockOrCreateLevel(levelRepo, itemID, first, "")
	if err != nil {
		return nil, nil, err
	}
	secondLevel, err := lockOrCreateLevel(levelRepo, itemID, second, "")
	if err != nil {
		return nil, nil, err
	}
	if firstLevel.WarehouseID == fromID {
		return firstLevel, secondLevel, nil
	}
	return secondLevel, firstLevel, nil
}
