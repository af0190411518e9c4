package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/event"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

const (
	testCompanyID   = "00000000-0000-0000-0000-00000000000a"
	testUserID      = "00000000-0000-0000-0000-00000000000b"
	testItemID      = "00000000-0000-0000-0000-000000000001"
	testWarehouseID = "00000000-0000-0000-0000-000000000010"
	testWarehouse2  = "00000000-0000-0000-0000-000000000020"
)

// fixture arma el caso de uso sobre el almacén en memoria con un artículo y
// dos bodegas de la empresa de prueba ya creados.
type fixture struct {
	store    *memory.Store
	recorder *memory.EventRecorder
	uc       *ledger.StockLedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	recorder := memory.NewEventRecorder()

	itemRepo := memory.NewItemRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	require.NoError(t, itemRepo.Create(&entity.Item{
		ID: testItemID, CompanyID: testCompanyID, SKU: "SKU-001", Name: "Tornillo",
	}))
	require.NoError(t, warehouseRepo.Create(&entity.Warehouse{
		ID: testWarehouseID, CompanyID: testCompanyID, Name: "Principal", Active: true,
	}))
	require.NoError(t, warehouseRepo.Create(&entity.Warehouse{
		ID: testWarehouse2, CompanyID: testCompanyID, Name: "Secundaria", Active: true,
	}))

	uc := ledger.NewStockLedgerUseCase(
		memory.NewTxRunner(store),
		itemRepo,
		warehouseRepo,
		memory.NewStockLevelRepository(store),
		memory.NewStockMovementRepository(store),
		recorder,
	)
	return &fixture{store: store, recorder: recorder, uc: uc}
}

func (f *fixture) receive(t *testing.T, qty, cost string) {
	t.Helper()
	unitCost := decimal.RequireFromString(cost)
	_, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: decimal.RequireFromString(qty), UnitCost: &unitCost,
	})
	require.NoError(t, err)
}

func (f *fixture) level(t *testing.T, warehouseID string) *entity.StockLevel {
	t.Helper()
	level, err := memory.NewStockLevelRepository(f.store).Get(testItemID, warehouseID, "")
	require.NoError(t, err)
	return level
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func costPtr(s string) *decimal.Decimal {
	c := decimal.RequireFromString(s)
	return &c
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CreaNivelYMovimiento(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("50"),
	})
	require.NoError(t, err)
	require.Len(t, out.Levels, 1)
	assert.True(t, out.Levels[0].QuantityOnHand.Equal(qty("50")), "el nivel debe crearse con la cantidad recibida")
	assert.NotEmpty(t, out.TransactionID)

	movements, err := memory.NewStockMovementRepository(f.store).ListByItem(testItemID, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1, "cada entrada produce exactamente un movimiento")
	assert.Equal(t, entity.MovementTypeReceive, movements[0].Type)
	assert.True(t, movements[0].Quantity.Equal(qty("50")))
	assert.True(t, movements[0].QuantityBefore.IsZero())
	assert.True(t, movements[0].QuantityAfter.Equal(qty("50")))
	assert.Equal(t, testUserID, movements[0].CreatedBy)

	events := f.recorder.ByName(event.NameStockReceived)
	require.Len(t, events, 1, "debe publicarse StockReceived tras el commit")
}

func TestReceive_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)

	// 10 unidades a 100 + 10 unidades a 200 => costo promedio 150
	f.receive(t, "10", "100")
	f.receive(t, "10", "200")

	level := f.level(t, testWarehouseID)
	require.NotNil(t, level)
	assert.True(t, level.UnitCost.Equal(qty("150")), "el costo debe ser el promedio ponderado, fue %s", level.UnitCost)
	assert.True(t, level.QuantityOnHand.Equal(qty("20")))
}

func TestReceive_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceive_ItemDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: "otra-empresa", UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("5"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un item de otra empresa no debe ser visible")
}

func TestReceive_BodegaInactiva(t *testing.T) {
	f := newFixture(t)
	inactiveID := "00000000-0000-0000-0000-000000000030"
	require.NoError(t, memory.NewWarehouseRepository(f.store).Create(&entity.Warehouse{
		ID: inactiveID, CompanyID: testCompanyID, Name: "Cerrada", Active: false,
	}))

	_, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: inactiveID,
		Quantity: qty("5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una bodega inactiva no admite movimientos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_DescuentaYRegistraMovimiento(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")

	out, err := f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("20"),
	})
	require.NoError(t, err)
	assert.True(t, out.Levels[0].QuantityOnHand.Equal(qty("30")))

	movements, err := memory.NewStockMovementRepository(f.store).ListByItem(testItemID, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	// Más reciente primero
	assert.Equal(t, entity.MovementTypeIssue, movements[0].Type)
	assert.True(t, movements[0].Quantity.Equal(qty("-20")), "la salida se registra con signo negativo")
}

func TestIssue_ExactamenteTodoElStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")

	// Límite inclusivo: sacar exactamente lo que hay debe funcionar.
	out, err := f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("50"),
	})
	require.NoError(t, err)
	assert.True(t, out.Levels[0].QuantityOnHand.IsZero())
}

func TestIssue_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")

	_, err := f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("50.01"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	level := f.level(t, testWarehouseID)
	assert.True(t, level.QuantityOnHand.Equal(qty("50")), "una salida fallida no debe cambiar el nivel")
}

func TestIssue_NoDejaStockBajoLoReservado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")
	_, err := f.uc.Reserve(context.Background(), ledger.ReservationInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("30"),
	})
	require.NoError(t, err)

	// 50 en mano, 30 reservadas: sacar 25 dejaría 25 < 30 reservadas.
	_, err = f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("25"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailability)

	// Sacar 20 deja 30 = 30, el invariante se mantiene en el límite.
	_, err = f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("20"),
	})
	assert.NoError(t, err)
}

func TestIssue_Concurrente_SoloUnaGana(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")

	// Dos salidas de 30 contra 50 en mano: exactamente una debe tener éxito.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Issue(context.Background(), ledger.StockInput{
				CompanyID: testCompanyID, UserID: testUserID,
				ItemID: testItemID, WarehouseID: testWarehouseID,
				Quantity: qty("30"),
			})
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, okCount, "solo una de las dos salidas concurrentes debe ganar")

	level := f.level(t, testWarehouseID)
	assert.True(t, level.QuantityOnHand.Equal(qty("20")), "el nivel final debe reflejar una sola salida")
}

// Dos primeras entradas concurrentes a una clave sin nivel previo: la fila se
// crea una sola vez y ambas cantidades quedan acumuladas (ninguna pisa a la
// otra), con el ledger consistente contra el nivel.
func TestReceive_Concurrente_PrimerasEntradasSuman(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Receive(context.Background(), ledger.StockInput{
				CompanyID: testCompanyID, UserID: testUserID,
				ItemID: testItemID, WarehouseID: testWarehouseID,
				Quantity: qty("50"), UnitCost: costPtr("10"),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	level := f.level(t, testWarehouseID)
	assert.True(t, level.QuantityOnHand.Equal(qty("100")), "las dos entradas deben acumularse en el nivel")

	rec, err := f.uc.Reconcile(testCompanyID, testItemID, testWarehouseID, "")
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "la suma del ledger debe igualar el nivel tras entradas concurrentes")
	assert.True(t, rec.LedgerSum.Equal(qty("100")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_DeltaPositivoYNegativo(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "10")

	_, err := f.uc.Adjust(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("5"), Reason: "conteo físico",
	})
	require.NoError(t, err)

	out, err := f.uc.Adjust(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("-3"), Reason: "merma",
	})
	require.NoError(t, err)
	assert.True(t, out.Levels[0].QuantityOnHand.Equal(qty("12")))
}

func TestAdjust_RequiereReason(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "10")

	_, err := f.uc.Adjust(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un ajuste sin motivo debe rechazarse")
}

func TestAdjust_NuncaDejaStockNegativo(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "10", "10")

	_, err := f.uc.Adjust(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("-11"), Reason: "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestGetLevel_SinMovimientos(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetLevel(testCompanyID, testItemID, testWarehouseID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Las consultas exigen la misma pertenencia de empresa que las mutaciones:
// otra empresa no puede leer niveles ni el historial de movimientos ajenos.
func TestConsultas_DeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")
	intruder := "99999999-9999-9999-9999-999999999999"

	_, err := f.uc.GetLevel(intruder, testItemID, testWarehouseID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListMovementsByItem(intruder, testItemID, nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListMovementsByWarehouse(intruder, testWarehouseID, nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Reconcile(intruder, testItemID, testWarehouseID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// La empresa dueña sigue viendo su propio ledger.
	lvl, err := f.uc.GetLevel(testCompanyID, testItemID, testWarehouseID, "")
	require.NoError(t, err)
	assert.True(t, lvl.QuantityOnHand.Equal(qty("50")))
	movs, err := f.uc.ListMovementsByItem(testCompanyID, testItemID, nil, nil, 20, 0)
	require.NoError(t, err)
	assert.Len(t, movs.Items, 1)
}

func TestReconcile_LedgerReproduceElNivel(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "50", "10")

	_, err := f.uc.Issue(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("20"),
	})
	require.NoError(t, err)
	_, err = f.uc.Adjust(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("-5"), Reason: "merma",
	})
	require.NoError(t, err)

	rec, err := f.uc.Reconcile(testCompanyID, testItemID, testWarehouseID, "")
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "la suma del ledger debe igualar el nivel")
	assert.True(t, rec.QuantityOnHand.Equal(qty("25")))
	assert.True(t, rec.LedgerSum.Equal(qty("25")))
}

func TestPublicarFalla_NoRevierteLaOperacion(t *testing.T) {
	f := newFixture(t)
	f.recorder.Err = assert.AnError

	out, err := f.uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("10"),
	})
	require.NoError(t, err, "un fallo del publisher no debe revertir la transacción")
	assert.True(t, out.Levels[0].QuantityOnHand.Equal(qty("10")))
}

// warehouseRepoConError simula un fallo de infraestructura en la consulta de bodegas.
type warehouseRepoConError struct {
	repository.WarehouseRepository
	err error
}

func (r warehouseRepoConError) GetByID(string) (*entity.Warehouse, error) { return nil, r.err }

// Un error del repositorio debe llegar al caso de uso tal cual, no disfrazado
// de ErrNotFound: el cliente distinguirá "no existe" de "la consulta falló".
func TestReceive_ErrorDeRepositorioNoEsNotFound(t *testing.T) {
	store := memory.NewStore()
	itemRepo := memory.NewItemRepository(store)
	require.NoError(t, itemRepo.Create(&entity.Item{
		ID: testItemID, CompanyID: testCompanyID, SKU: "SKU-001", Name: "Tornillo",
	}))

	uc := ledger.NewStockLedgerUseCase(
		memory.NewTxRunner(store),
		itemRepo,
		warehouseRepoConError{err: assert.AnError},
		memory.NewStockLevelRepository(store),
		memory.NewStockMovementRepository(store),
		memory.NewEventRecorder(),
	)

	_, err := uc.Receive(context.Background(), ledger.StockInput{
		CompanyID: testCompanyID, UserID: testUserID,
		ItemID: testItemID, WarehouseID: testWarehouseID,
		Quantity: qty("10"),
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
