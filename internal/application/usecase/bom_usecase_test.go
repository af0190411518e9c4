package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

const (
	bomCompanyID = "00000000-0000-0000-0000-00000000000a"
	bomProductID = "00000000-0000-0000-0000-000000000001"
	bomCompA     = "00000000-0000-0000-0000-000000000002"
	bomCompB     = "00000000-0000-0000-0000-000000000003"
)

func newBOMFixture(t *testing.T) (*usecase.BOMUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	itemRepo := memory.NewItemRepository(store)
	for _, it := range []struct{ id, sku string }{
		{bomProductID, "SKU-PROD"}, {bomCompA, "SKU-A"}, {bomCompB, "SKU-B"},
	} {
		require.NoError(t, itemRepo.Create(&entity.Item{ID: it.id, CompanyID: bomCompanyID, SKU: it.sku, Name: it.sku}))
	}
	return usecase.NewBOMUseCase(memory.NewBOMRepository(store), itemRepo), store
}

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func TestBOMCreate_PrimeraVersionActiva(t *testing.T) {
	uc, _ := newBOMFixture(t)

	first, err := uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomCompA, QuantityPerUnit: one()}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.True(t, first.IsActive, "la primera versión queda activa")

	second, err := uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomCompB, QuantityPerUnit: one()}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	assert.False(t, second.IsActive, "las versiones siguientes nacen inactivas")

	active, err := uc.GetActiveByProduct(bomCompanyID, bomProductID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestBOMActivate_DesactivaLaAnterior(t *testing.T) {
	uc, _ := newBOMFixture(t)

	first, err := uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomCompA, QuantityPerUnit: one()}},
	})
	require.NoError(t, err)
	second, err := uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomCompB, QuantityPerUnit: one()}},
	})
	require.NoError(t, err)

	_, err = uc.Activate(bomCompanyID, second.ID)
	require.NoError(t, err)

	active, err := uc.GetActiveByProduct(bomCompanyID, bomProductID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID, "a lo sumo una versión activa por producto")
	assert.NotEqual(t, first.ID, active.ID)
}

func TestBOMCreate_Validaciones(t *testing.T) {
	uc, _ := newBOMFixture(t)

	// Producto como componente de sí mismo.
	_, err := uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomProductID, QuantityPerUnit: one()}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Componente duplicado.
	_, err = uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID: bomProductID,
		Components: []dto.BOMComponentRequest{
			{ComponentItemID: bomCompA, QuantityPerUnit: one()},
			{ComponentItemID: bomCompA, QuantityPerUnit: one()},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva.
	_, err = uc.Create(bomCompanyID, dto.CreateBOMRequest{
		ProductID:  bomProductID,
		Components: []dto.BOMComponentRequest{{ComponentItemID: bomCompA, QuantityPerUnit: decimal.Zero}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Sin componentes.
	_, err = uc.Create(bomCompanyID, dto.CreateBOMRequest{ProductID: bomProductID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBOMGetActive_SinBOM(t *testing.T) {
	uc, _ := newBOMFixture(t)

	_, err := uc.GetActiveByProduct(bomCompanyID, bomCompA)
	assert.ErrorIs(t, err, domain.ErrMissingBOM)
}
