package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// BOMUseCase gestión de listas de materiales: versiones por producto con a lo
// sumo una activa a la vez.
type BOMUseCase struct {
	bomRepo  repository.BOMRepository
	itemRepo repository.ItemRepository
}

// NewBOMUseCase construye el caso de uso.
func NewBOMUseCase(bomRepo repository.BOMRepository, itemRepo repository.ItemRepository) *BOMUseCase {
	return &BOMUseCase{bomRepo: bomRepo, itemRepo: itemRepo}
}

// Create crea una versión nueva del BOM del producto. La primera versión de un
// producto queda activa; las siguientes se crean inactivas hasta Activate.
// Un producto no puede ser componente de sí mismo.
func (uc *BOMUseCase) Create(companyID string, in dto.CreateBOMRequest) (*dto.BOMResponse, error) {
	if in.ProductID == "" || len(in.Components) == 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.itemRepo.GetByID(in.ProductID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	seen := make(map[string]bool, len(in.Components))
	for _, c := range in.Components {
		if c.ComponentItemID == "" || c.ComponentItemID == in.ProductID || seen[c.ComponentItemID] {
			return nil, domain.ErrInvalidInput
		}
		if !c.QuantityPerUnit.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		seen[c.ComponentItemID] = true
		component, err := uc.itemRepo.GetByID(c.ComponentItemID)
		if err != nil || component == nil {
			return nil, domain.ErrNotFound
		}
		if component.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	}

	versions, err := uc.bomRepo.ListByProduct(in.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bom := &entity.BillOfMaterials{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: in.ProductID,
		Version:   len(versions) + 1,
		IsActive:  len(versions) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, c := range in.Components {
		bom.Components = append(bom.Components, entity.BOMComponent{
			ID:              uuid.New().String(),
			BOMID:           bom.ID,
			ComponentItemID: c.ComponentItemID,
			QuantityPerUnit: c.QuantityPerUnit,
		})
	}
	if err := uc.bomRepo.Create(bom); err != nil {
		return nil, err
	}
	return toBOMResponse(bom), nil
}

// Activate marca una versión como activa y desactiva la anterior del producto.
func (uc *BOMUseCase) Activate(companyID, bomID string) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrNotFound
	}
	if bom.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if err := uc.bomRepo.Activate(bomID); err != nil {
		return nil, err
	}
	bom.IsActive = true
	return toBOMResponse(bom), nil
}

// GetActiveByProduct devuelve la versión activa del BOM del producto.
func (uc *BOMUseCase) GetActiveByProduct(companyID, productID string) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetActiveByProduct(productID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrMissingBOM
	}
	if bom.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toBOMResponse(bom), nil
}

func toBOMResponse(b *entity.BillOfMaterials) *dto.BOMResponse {
	resp := &dto.BOMResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Version:   b.Version,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
	}
	for _, c := range b.Components {
		resp.Components = append(resp.Components, dto.BOMComponentResponse{
			ComponentItemID: c.ComponentItemID,
			QuantityPerUnit: c.QuantityPerUnit,
		})
	}
	return resp
}
