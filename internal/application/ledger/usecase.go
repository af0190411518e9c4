package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	domaininv "github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// StockLedgerUseCase es el motor de movimientos: registra entradas, salidas,
// ajustes, reservas y traslados de forma transaccional con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback. Cada mutación de StockLevel produce
// exactamente un movimiento en el ledger (dos para traslados) en la misma
// transacción; los eventos de dominio se publican después del commit.
type StockLedgerUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	levelRepo     repository.StockLevelRepository    // solo lectura, fuera de tx
	movementRepo  repository.StockMovementRepository // solo lectura, fuera de tx
	publisher     EventPublisher
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	levelRepo repository.StockLevelRepository,
	movementRepo repository.StockMovementRepository,
	publisher EventPublisher,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		levelRepo:     levelRepo,
		movementRepo:  movementRepo,
		publisher:     publisher,
	}
}

// StockInput entrada para las operaciones simples del ledger (receive/issue/adjust).
type StockInput struct {
	CompanyID   string
	UserID      string
	ItemID      string
	WarehouseID string
	BinID       string
	Quantity    decimal.Decimal  // en adjust es el delta con signo
	UnitCost    *decimal.Decimal // solo entradas
	Reason      string
}

// Receive registra una entrada de stock: crea el nivel si no existe, suma la
// cantidad, recalcula el costo promedio ponderado y agrega el movimiento.
func (uc *StockLedgerUseCase) Receive(ctx context.Context, in StockInput) (*dto.OperationResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.loadCollaborators(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *dto.OperationResponse
	var events []event.Event

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movRepo repository.StockMovementRepository) error {
		events = events[:0]
		level, err := lockOrCreateLevel(levelRepo, in.ItemID, in.WarehouseID, in.BinID)
		if err != nil {
			return err
		}
		before := level.QuantityOnHand
		if in.UnitCost != nil {
			level.UnitCost = domaininv.WeightedAverageCost(level.QuantityOnHand, level.UnitCost, in.Quantity, *in.UnitCost)
		}
		level.QuantityOnHand = level.QuantityOnHand.Add(in.Quantity)
		level.LastMovementAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		mov := newMovement(txID, level, entity.MovementTypeReceive, in.Quantity, before, "", "", in.Reason, in.UserID, now)
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		unitCost := level.UnitCost
		events = append(events, event.StockReceived{
			ItemID: in.ItemID, WarehouseID: in.WarehouseID,
			Quantity: in.Quantity, UnitCost: unitCost, OccurredAt: now,
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

// Issue registra una salida de stock. Falla con ErrInsufficientStock si la
// cantidad supera el stock en mano. La reserva no se consume automáticamente:
// quien reservó debe liberar antes o junto con la salida; una salida que
// dejaría el stock por debajo de lo reservado falla con
// ErrInsufficientAvailability para proteger el invariante.
func (uc *StockLedgerUseCase) Issue(ctx context.Context, in StockInput) (*dto.OperationResponse, error) {
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

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movRepo repository.StockMovementRepository) error {
		events = events[:0]
		level, err := lockOrCreateLevel(levelRepo, in.ItemID, in.WarehouseID, in.BinID)
		if err != nil {
			return err
		}
		if level.QuantityOnHand.LessThan(in.Quantity) {
			return domain.ErrInsufficientStock
		}
		after := level.QuantityOnHand.Sub(in.Quantity)
		if after.LessThan(level.QuantityReserved) {
			return domain.ErrInsufficientAvailability
		}
		before := level.QuantityOnHand
		level.QuantityOnHand = after
		level.LastMovementAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		mov := newMovement(txID, level, entity.MovementTypeIssue, in.Quantity.Neg(), before, "", "", in.Reason, in.UserID, now)
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		events = append(events, event.StockIssued{
			ItemID: in.ItemID, WarehouseID: in.WarehouseID,
			Quantity: in.Quantity, Reason: in.Reason, OccurredAt: now,
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

// Adjust aplica un delta con signo al stock en mano. Nunca deja el stock
// negativo ni por debajo de lo reservado; guarda el movimiento con la
// cantidad antes/después.
func (uc *StockLedgerUseCase) Adjust(ctx context.Context, in StockInput) (*dto.OperationResponse, error) {
	if in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.loadCollaborators(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *dto.OperationResponse
	var events []event.Event

	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movRepo repository.StockMovementRepository) error {
		events = events[:0]
		level, err := lockOrCreateLevel(levelRepo, in.ItemID, in.WarehouseID, in.BinID)
		if err != nil {
			return err
		}
		after := level.QuantityOnHand.Add(in.Quantity)
		if after.LessThan(decimal.Zero) {
			return domain.ErrInsufficientStock
		}
		if after.LessThan(level.QuantityReserved) {
			return domain.ErrInsufficientAvailability
		}
		before := level.QuantityOnHand
		level.QuantityOnHand = after
		level.LastMovementAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		mov := newMovement(txID, level, entity.MovementTypeAdjustment, in.Quantity, before, "", "", in.Reason, in.UserID, now)
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		events = append(events, event.StockAdjusted{
			ItemID: in.ItemID, WarehouseID: in.WarehouseID,
			Delta: in.Quantity, Reason: in.Reason, OccurredAt: now,
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

// loadCollaborators valida que el artículo y las bodegas existan, pertenezcan
// a la empresa y estén activas.
func (uc *StockLedgerUseCase) loadCollaborators(companyID, itemID string, warehouseIDs ...string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	for _, whID := range warehouseIDs {
		wh, err := uc.warehouseRepo.GetByID(whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
		if wh.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		if !wh.Active {
			return nil, domain.ErrInvalidState
		}
	}
	return item, nil
}

// publish despacha los eventos acumulados después del commit; un fallo solo se registra.
func (uc *StockLedgerUseCase) publish(ctx context.Context, events []event.Event) {
	if uc.publisher == nil || len(events) == 0 {
		return
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		log.Warn().Err(err).Int("events", len(events)).Msg("publicación de eventos del ledger")
	}
}

// lockOrCreateLevel bloquea la fila del nivel, creándola en cero si no existe
// (creación perezosa con el primer movimiento). Un SELECT FOR UPDATE sobre una
// fila inexistente no bloquea nada, así que dos primeras entradas concurrentes
// a la misma clave leerían ambas desde cero y la segunda pisaría a la primera.
// Por eso la fila se inserta primero (ON CONFLICT DO NOTHING) y se vuelve a
// bloquear: el segundo GetForUpdate espera el commit de la otra transacción y
// parte de su estado confirmado.
func lockOrCreateLevel(levelRepo repository.StockLevelRepository, itemID, warehouseID, binID string) (*entity.StockLevel, error) {
	level, err := levelRepo.GetForUpdate(itemID, warehouseID, binID)
	if err != nil {
		return nil, err
	}
	if level != nil {
		return level, nil
	}
	if err := levelRepo.CreateIfMissing(itemID, warehouseID, binID); err != nil {
		return nil, err
	}
	level, err = levelRepo.GetForUpdate(itemID, warehouseID, binID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrConflict
	}
	return level, nil
}

// newMovement arma un registro del ledger con el snapshot antes/después.
func newMovement(txID string, level *entity.StockLevel, movType string, change, before decimal.Decimal, refType, refID, reason, userID string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:             uuid.New().String(),
		TransactionID:  txID,
		ItemID:         level.ItemID,
		WarehouseID:    level.WarehouseID,
		BinID:          level.BinID,
		Type:           movType,
		Quantity:       change,
		QuantityBefore: before,
		QuantityAfter:  before.Add(change),
		UnitCost:       level.UnitCost,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Reason:         reason,
		Date:           now,
		CreatedAt:      now,
		CreatedBy:      userID,
	}
}

func operationResponse(txID string, levels ...*entity.StockLevel) *dto.OperationResponse {
	resp := &dto.OperationResponse{TransactionID: txID}
	for _, l := range levels {
		resp.Levels = append(resp.Levels, toLevelResponse(l))
	}
	return resp
}

func toLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ItemID:            l.ItemID,
		WarehouseID:       l.WarehouseID,
		BinID:             l.BinID,
		QuantityOnHand:    l.QuantityOnHand,
		QuantityReserved:  l.QuantityReserved,
		QuantityAvailable: l.Available(),
		UnitCost:          l.UnitCost,
		LastMovementAt:    l.LastMovementAt,
	}
}
