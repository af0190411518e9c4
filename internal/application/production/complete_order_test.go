package production_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/production"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

const (
	companyID   = "00000000-0000-0000-0000-00000000000a"
	userID      = "00000000-0000-0000-0000-00000000000b"
	productID   = "00000000-0000-0000-0000-000000000001"
	componentA  = "00000000-0000-0000-0000-000000000002"
	componentB  = "00000000-0000-0000-0000-000000000003"
	warehouseID = "00000000-0000-0000-0000-000000000010"
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture deja listo un taller con BOM activo:
//
//	producto = 2 × componente A + 1 × componente B
//
// y saldos iniciales de A=100 y B=50 en la bodega.
type fixture struct {
	store    *memory.Store
	recorder *memory.EventRecorder
	ledgerUC *ledger.StockLedgerUseCase
	orderUC  *production.OrderUseCase
	complete *production.CompleteOrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	recorder := memory.NewEventRecorder()
	txRunner := memory.NewTxRunner(store)

	itemRepo := memory.NewItemRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	for _, it := range []struct{ id, sku, name string }{
		{productID, "SKU-PROD", "Mesa"},
		{componentA, "SKU-A", "Pata"},
		{componentB, "SKU-B", "Tablero"},
	} {
		require.NoError(t, itemRepo.Create(&entity.Item{ID: it.id, CompanyID: companyID, SKU: it.sku, Name: it.name}))
	}
	require.NoError(t, warehouseRepo.Create(&entity.Warehouse{
		ID: warehouseID, CompanyID: companyID, Name: "Taller", Active: true,
	}))

	bomUC := usecase.NewBOMUseCase(memory.NewBOMRepository(store), itemRepo)
	_, err := bomUC.Create(companyID, dto.CreateBOMRequest{
		ProductID: productID,
		Components: []dto.BOMComponentRequest{
			{ComponentItemID: componentA, QuantityPerUnit: qty("2")},
			{ComponentItemID: componentB, QuantityPerUnit: qty("1")},
		},
	})
	require.NoError(t, err, "la primera versión del BOM debe quedar activa")

	ledgerUC := ledger.NewStockLedgerUseCase(
		txRunner, itemRepo, warehouseRepo,
		memory.NewStockLevelRepository(store),
		memory.NewStockMovementRepository(store),
		recorder,
	)
	f := &fixture{
		store:    store,
		recorder: recorder,
		ledgerUC: ledgerUC,
		orderUC:  production.NewOrderUseCase(txRunner, memory.NewProductionOrderRepository(store), itemRepo, warehouseRepo),
		complete: production.NewCompleteOrderUseCase(txRunner, recorder),
	}
	f.seed(t, componentA, "100")
	f.seed(t, componentB, "50")
	return f
}

func (f *fixture) seed(t *testing.T, itemID, qtyStr string) {
	t.Helper()
	cost := qty("10")
	_, err := f.ledgerUC.Receive(context.Background(), ledger.StockInput{
		CompanyID: companyID, UserID: userID,
		ItemID: itemID, WarehouseID: warehouseID,
		Quantity: qty(qtyStr), UnitCost: &cost,
	})
	require.NoError(t, err)
}

func (f *fixture) newOrder(t *testing.T, plannedQty string) string {
	t.Helper()
	order, err := f.orderUC.Create(companyID, userID, dto.CreateProductionOrderRequest{
		ProductID: productID, WarehouseID: warehouseID, PlannedQty: qty(plannedQty),
	})
	require.NoError(t, err)
	return order.ID
}

func (f *fixture) level(t *testing.T, itemID string) *entity.StockLevel {
	t.Helper()
	level, err := memory.NewStockLevelRepository(f.store).Get(itemID, warehouseID, "")
	require.NoError(t, err)
	return level
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	movements, err := memory.NewStockMovementRepository(f.store).ListByWarehouse(warehouseID, nil, nil, 100, 0)
	require.NoError(t, err)
	return len(movements)
}

func TestComplete_ConsumePorBOMYProduce(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	out, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
	})
	require.NoError(t, err)
	assert.True(t, out.IsCompleted)
	assert.True(t, out.ProducedQty.Equal(qty("10")))
	require.Len(t, out.Warnings, 1, "sin consumos reportados debe avisarse que se usó el BOM")

	// 10 unidades: consume 20 de A y 10 de B, produce 10 del terminado.
	assert.True(t, f.level(t, componentA).QuantityOnHand.Equal(qty("80")))
	assert.True(t, f.level(t, componentB).QuantityOnHand.Equal(qty("40")))
	assert.True(t, f.level(t, productID).QuantityOnHand.Equal(qty("10")))

	// 2 receives iniciales + 2 CONSUME + 1 PRODUCE.
	assert.Equal(t, 5, f.movementCount(t))

	order, err := f.orderUC.GetByID(companyID, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)

	assert.Len(t, f.recorder.ByName(event.NameProductionCompleted), 1)
}

func TestComplete_ConOverrides(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	// Consumo real de A distinto al teórico; B queda por BOM con aviso.
	produced := qty("8")
	out, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
		ConsumedOverrides: map[string]decimal.Decimal{componentA: qty("18")},
		ProducedOverride:  &produced,
	})
	require.NoError(t, err)
	assert.True(t, out.ProducedQty.Equal(qty("8")))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], componentB, "debe avisar qué componente usó el consumo por defecto")

	assert.True(t, f.level(t, componentA).QuantityOnHand.Equal(qty("82")))  // 100 - 18
	assert.True(t, f.level(t, componentB).QuantityOnHand.Equal(qty("42")))  // 50 - 8*1
	assert.True(t, f.level(t, productID).QuantityOnHand.Equal(qty("8")))
}

func TestComplete_OverrideDeItemFueraDelBOM(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	_, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
		ConsumedOverrides: map[string]decimal.Decimal{productID: qty("1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_ComponenteInsuficiente_NadaCambia(t *testing.T) {
	f := newFixture(t)
	// Plan de 30 unidades: necesita 60 de A (hay 100) y 30 de B (hay 50) — pasa.
	// Plan de 60: necesita 120 de A > 100 — debe fallar sin tocar nada.
	orderID := f.newOrder(t, "60")

	before := f.movementCount(t)
	_, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Atomicidad: ni niveles ni ledger ni orden cambian.
	assert.True(t, f.level(t, componentA).QuantityOnHand.Equal(qty("100")))
	assert.True(t, f.level(t, componentB).QuantityOnHand.Equal(qty("50")))
	assert.Nil(t, f.level(t, productID))
	assert.Equal(t, before, f.movementCount(t))

	order, err := f.orderUC.GetByID(companyID, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, order.Status, "la orden queda como estaba para reintentar")
}

func TestComplete_ComponenteSinNivel(t *testing.T) {
	f := newFixture(t)
	// Bodega nueva sin stock de componentes.
	otherWH := "00000000-0000-0000-0000-000000000099"
	require.NoError(t, memory.NewWarehouseRepository(f.store).Create(&entity.Warehouse{
		ID: otherWH, CompanyID: companyID, Name: "Vacía", Active: true,
	}))
	order, err := f.orderUC.Create(companyID, userID, dto.CreateProductionOrderRequest{
		ProductID: productID, WarehouseID: otherWH, PlannedQty: qty("1"),
	})
	require.NoError(t, err)

	_, err = f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: order.ID,
	})
	assert.ErrorIs(t, err, domain.ErrStockLevelMissing)
}

func TestComplete_Idempotente(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	first, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
	})
	require.NoError(t, err)

	movementsAfterFirst := f.movementCount(t)
	second, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
	})
	require.NoError(t, err, "completar una orden completada no es un error")
	assert.True(t, second.IsCompleted)
	assert.True(t, second.ProducedQty.Equal(first.ProducedQty), "debe devolver el resultado anterior")
	require.Len(t, second.Warnings, 1)
	assert.Contains(t, second.Warnings[0], "ya estaba completada")

	assert.Equal(t, movementsAfterFirst, f.movementCount(t), "el segundo cierre no mueve stock")
	assert.True(t, f.level(t, productID).QuantityOnHand.Equal(qty("10")))
	assert.Len(t, f.recorder.ByName(event.NameProductionCompleted), 1, "sin evento duplicado")
}

func TestComplete_Concurrente_UnSoloEfecto(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.complete.Complete(context.Background(), production.CompleteInput{
				CompanyID: companyID, UserID: userID, OrderID: orderID,
			})
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Ambos cierres responden completado, pero el stock se mueve una sola vez.
	assert.True(t, f.level(t, productID).QuantityOnHand.Equal(qty("10")))
	assert.True(t, f.level(t, componentA).QuantityOnHand.Equal(qty("80")))
	assert.Len(t, f.recorder.ByName(event.NameProductionCompleted), 1)
}

func TestComplete_SinBOMActivo(t *testing.T) {
	f := newFixture(t)
	// Producto nuevo sin BOM.
	orphanID := "00000000-0000-0000-0000-000000000077"
	require.NoError(t, memory.NewItemRepository(f.store).Create(&entity.Item{
		ID: orphanID, CompanyID: companyID, SKU: "SKU-ORFANO", Name: "Silla",
	}))
	order, err := f.orderUC.Create(companyID, userID, dto.CreateProductionOrderRequest{
		ProductID: orphanID, WarehouseID: warehouseID, PlannedQty: qty("1"),
	})
	require.NoError(t, err)

	_, err = f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: order.ID,
	})
	assert.ErrorIs(t, err, domain.ErrMissingBOM)
}

func TestComplete_OrdenCancelada(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")
	_, err := f.orderUC.Cancel(context.Background(), companyID, orderID)
	require.NoError(t, err)

	_, err = f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: companyID, UserID: userID, OrderID: orderID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una orden cancelada no puede completarse")
}

func TestComplete_OrdenDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	_, err := f.complete.Complete(context.Background(), production.CompleteInput{
		CompanyID: "otra-empresa", UserID: userID, OrderID: orderID,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrden_CicloDeVida(t *testing.T) {
	f := newFixture(t)
	orderID := f.newOrder(t, "10")

	started, err := f.orderUC.Start(context.Background(), companyID, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInProgress, started.Status)

	// Iniciar dos veces no es válido.
	_, err = f.orderUC.Start(context.Background(), companyID, orderID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	cancelled, err := f.orderUC.Cancel(context.Background(), companyID, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)

	// Cancelar una orden cancelada tampoco.
	_, err = f.orderUC.Cancel(context.Background(), companyID, orderID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
