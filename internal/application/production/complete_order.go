package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// CompleteOrderUseCase orquesta el cierre de una orden de producción: resuelve
// el BOM activo, valida y consume los componentes, ingresa el producto
// terminado y transiciona la orden a COMPLETED, todo en una sola transacción.
// Toda la validación ocurre antes de cualquier mutación: si un componente
// falla, ningún nivel cambia y la orden queda como estaba. Completar una orden
// ya completada es idempotente: no vuelve a mover stock y devuelve el
// resultado anterior.
type CompleteOrderUseCase struct {
	txRunner  TxRunner
	publisher ledger.EventPublisher
}

// NewCompleteOrderUseCase construye el caso de uso.
func NewCompleteOrderUseCase(txRunner TxRunner, publisher ledger.EventPublisher) *CompleteOrderUseCase {
	return &CompleteOrderUseCase{txRunner: txRunner, publisher: publisher}
}

// CompleteInput entrada para el cierre de una orden.
// ConsumedOverrides reporta consumos reales por componente (clave: ItemID);
// los componentes sin override consumen QuantityPerUnit * cantidad producida.
// ProducedOverride reemplaza la cantidad planificada de la orden.
type CompleteInput struct {
	CompanyID         string
	UserID            string
	OrderID           string
	ConsumedOverrides map[string]decimal.Decimal
	ProducedOverride  *decimal.Decimal
}

// componentPlan cantidad requerida resuelta para un componente.
type componentPlan struct {
	itemID   string
	required decimal.Decimal
}

// Complete ejecuta el cierre. Ver la descripción del tipo para las garantías.
func (uc *CompleteOrderUseCase) Complete(ctx context.Context, in CompleteInput) (*dto.CompletionResponse, error) {
	if in.OrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ProducedOverride != nil && !in.ProducedOverride.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *dto.CompletionResponse
	var events []event.Event

	err := uc.txRunner.RunProduction(ctx, func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		orderRepo repository.ProductionOrderRepository,
		bomRepo repository.BOMRepository,
	) error {
		events = events[:0]

		// Bloquea la orden: dos cierres concurrentes del mismo ID se serializan
		// y el segundo ve el estado COMPLETED.
		order, err := orderRepo.GetByIDForUpdate(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.CompanyID != in.CompanyID {
			return domain.ErrForbidden
		}
		if order.Status == entity.OrderStatusCancelled {
			return domain.ErrInvalidState
		}
		if order.Status == entity.OrderStatusCompleted {
			// Idempotencia: devolver el resultado anterior sin mover stock.
			result = priorResult(order)
			return nil
		}

		bom, err := bomRepo.GetActiveByProduct(order.ProductID)
		if err != nil {
			return err
		}
		if bom == nil || len(bom.Components) == 0 {
			return domain.ErrMissingBOM
		}

		producedQty := order.PlannedQty
		if in.ProducedOverride != nil {
			producedQty = *in.ProducedOverride
		}
		if !producedQty.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}

		plans, warnings, err := resolveConsumption(bom, producedQty, in.ConsumedOverrides)
		if err != nil {
			return err
		}

		// Fase de validación: bloquear y verificar todos los componentes antes
		// de mutar cualquiera. Orden ascendente por artículo para evitar
		// deadlocks con cierres concurrentes que compartan componentes.
		levels := make(map[string]*entity.StockLevel, len(plans))
		for _, plan := range plans {
			level, err := levelRepo.GetForUpdate(plan.itemID, order.WarehouseID, "")
			if err != nil {
				return err
			}
			if level == nil {
				return domain.ErrStockLevelMissing
			}
			if level.QuantityOnHand.LessThan(plan.required) {
				return domain.ErrInsufficientStock
			}
			if level.QuantityOnHand.Sub(plan.required).LessThan(level.QuantityReserved) {
				return domain.ErrInsufficientAvailability
			}
			levels[plan.itemID] = level
		}

		// Fase de mutación: consumir componentes y registrar movimientos.
		for _, plan := range plans {
			level := levels[plan.itemID]
			before := level.QuantityOnHand
			level.QuantityOnHand = level.QuantityOnHand.Sub(plan.required)
			level.LastMovementAt = now
			if err := levelRepo.Upsert(level); err != nil {
				return err
			}
			mov := productionMovement(txID, level, entity.MovementTypeConsume, plan.required.Neg(), before, order.ID, in.UserID, now)
			if err := movRepo.Append(mov); err != nil {
				return err
			}
			if err := orderRepo.AddConsumption(&entity.Consumption{
				ID:              uuid.New().String(),
				OrderID:         order.ID,
				ComponentItemID: plan.itemID,
				Quantity:        plan.required,
				CreatedAt:       now,
			}); err != nil {
				return err
			}
		}

		// Producto terminado: crear el nivel si no existe e ingresar la
		// cantidad. Insertar y re-bloquear, igual que en el ledger: un FOR
		// UPDATE sobre una fila inexistente no protege contra otra creación
		// concurrente de la misma clave.
		product, err := levelRepo.GetForUpdate(order.ProductID, order.WarehouseID, "")
		if err != nil {
			return err
		}
		if product == nil {
			if err := levelRepo.CreateIfMissing(order.ProductID, order.WarehouseID, ""); err != nil {
				return err
			}
			product, err = levelRepo.GetForUpdate(order.ProductID, order.WarehouseID, "")
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrConflict
			}
		}
		productBefore := product.QuantityOnHand
		product.QuantityOnHand = product.QuantityOnHand.Add(producedQty)
		product.LastMovementAt = now
		if err := levelRepo.Upsert(product); err != nil {
			return err
		}
		mov := productionMovement(txID, product, entity.MovementTypeProduce, producedQty, productBefore, order.ID, in.UserID, now)
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		if err := orderRepo.AddProduction(&entity.Production{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: order.ProductID,
			Quantity:  producedQty,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		order.Status = entity.OrderStatusCompleted
		order.CompletedAt = &now
		order.UpdatedAt = now
		if err := orderRepo.UpdateStatus(order); err != nil {
			return err
		}

		events = append(events, event.ProductionCompleted{
			OrderID:     order.ID,
			ProductID:   order.ProductID,
			WarehouseID: order.WarehouseID,
			ProducedQty: producedQty,
			OccurredAt:  now,
		})
		result = &dto.CompletionResponse{
			OrderID:     order.ID,
			IsCompleted: true,
			ProducedQty: producedQty,
			Warnings:    warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if uc.publisher != nil && len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			log.Warn().Err(err).Str("order_id", in.OrderID).Msg("publicación de eventos de producción")
		}
	}
	return result, nil
}

// resolveConsumption calcula la cantidad requerida por componente, aplicando
// overrides cuando existen. Falla con ErrInvalidInput si alguna cantidad
// resuelta no es positiva o si hay un override para un artículo fuera del BOM.
func resolveConsumption(bom *entity.BillOfMaterials, producedQty decimal.Decimal, overrides map[string]decimal.Decimal) ([]componentPlan, []string, error) {
	inBOM := make(map[string]bool, len(bom.Components))
	for _, c := range bom.Components {
		inBOM[c.ComponentItemID] = true
	}
	for itemID := range overrides {
		if !inBOM[itemID] {
			return nil, nil, domain.ErrInvalidInput
		}
	}

	var warnings []string
	if len(overrides) == 0 {
		warnings = append(warnings, "sin consumos reportados: se usaron las cantidades del BOM")
	}

	plans := make([]componentPlan, 0, len(bom.Components))
	for _, c := range bom.Components {
		required, ok := overrides[c.ComponentItemID]
		if !ok {
			required = c.QuantityPerUnit.Mul(producedQty)
			if len(overrides) > 0 {
				warnings = append(warnings, fmt.Sprintf("consumo por defecto del BOM para el componente %s", c.ComponentItemID))
			}
		}
		if !required.GreaterThan(decimal.Zero) {
			return nil, nil, domain.ErrInvalidInput
		}
		plans = append(plans, componentPlan{itemID: c.ComponentItemID, required: required})
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].itemID < plans[j].itemID })
	return plans, warnings, nil
}

// priorResult reconstruye la respuesta de un cierre previo desde los registros
// de producción persistidos en la orden.
func priorResult(order *entity.ProductionOrder) *dto.CompletionResponse {
	produced := decimal.Zero
	for _, p := range order.Productions {
		produced = produced.Add(p.Quantity)
	}
	return &dto.CompletionResponse{
		OrderID:     order.ID,
		IsCompleted: true,
		ProducedQty: produced,
		Warnings:    []string{"la orden ya estaba completada; sin efecto en stock"},
	}
}

// productionMovement arma un movimiento CONSUME/PRODUCE referenciando la orden.
func productionMovement(txID string, level *entity.StockLevel, movType string, change, before decimal.Decimal, orderID, userID string, now time.Time) *entity.StockMovement {
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
		ReferenceType:  entity.ReferenceTypeProductionOrder,
		ReferenceID:    orderID,
		Date:           now,
		CreatedAt:      now,
		CreatedBy:      userID,
	}
}
