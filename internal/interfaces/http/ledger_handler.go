package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
)

// LedgerHandler maneja las peticiones HTTP del motor de movimientos (protegido).
type LedgerHandler struct {
	uc *ledger.StockLedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.StockLedgerUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Receive godoc
// @Summary      Registrar entrada de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "item_id, warehouse_id, quantity > 0, unit_cost opcional"
// @Success      201   {object}  dto.OperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/receive [post]
func (h *LedgerHandler) Receive(c *fiber.Ctx) error {
	return h.stockOperation(c, h.uc.Receive)
}

// Issue godoc
// @Summary      Registrar salida de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "item_id, warehouse_id, quantity > 0"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/issue [post]
func (h *LedgerHandler) Issue(c *fiber.Ctx) error {
	return h.stockOperation(c, h.uc.Issue)
}

// Adjust godoc
// @Summary      Registrar ajuste de stock (delta con signo, reason obligatorio)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "item_id, warehouse_id, quantity != 0, reason"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/adjust [post]
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	return h.stockOperation(c, h.uc.Adjust)
}

// stockOperation factoriza receive/issue/adjust: mismo request, misma respuesta.
func (h *LedgerHandler) stockOperation(c *fiber.Ctx, op func(ctx context.Context, in ledger.StockInput) (*dto.OperationResponse, error)) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.StockOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := op(c.Context(), ledger.StockInput{
		CompanyID:   companyID,
		UserID:      userID,
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		BinID:       in.BinID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reason:      in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reserve godoc
// @Summary      Reservar cantidad disponible (no mueve stock en mano)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "item_id, warehouse_id, quantity > 0"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/reserve [post]
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.uc.Reserve)
}

// Release godoc
// @Summary      Liberar cantidad reservada
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "item_id, warehouse_id, quantity > 0"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/release [post]
func (h *LedgerHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.uc.Release)
}

func (h *LedgerHandler) reservation(c *fiber.Ctx, op func(ctx context.Context, in ledger.ReservationInput) (*dto.OperationResponse, error)) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := op(c.Context(), ledger.ReservationInput{
		CompanyID:   companyID,
		UserID:      userID,
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		BinID:       in.BinID,
		Quantity:    in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas (atómico, dos movimientos correlacionados)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, from_warehouse_id, to_warehouse_id, quantity > 0"
// @Success      201   {object}  dto.OperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/transfer [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Transfer(c.Context(), ledger.TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ItemID:          in.ItemID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetLevel godoc
// @Summary      Consultar nivel de stock por item+bodega(+bin)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true   "Item (UUID)"
// @Param        warehouse_id  query  string  true   "Bodega (UUID)"
// @Param        bin_id        query  string  false  "Bin opcional"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/levels [get]
func (h *LedgerHandler) GetLevel(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.GetLevel(companyID, c.Query("item_id"), c.Query("warehouse_id"), c.Query("bin_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger por item o por bodega
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "Filtrar por item (item_id o warehouse_id, uno de los dos)"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "Fecha inicial RFC3339"
// @Param        to            query  string  false  "Fecha final RFC3339"
// @Param        limit         query  int     false  "Máximo de registros (default 20)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	itemID := c.Query("item_id")
	warehouseID := c.Query("warehouse_id")
	var out *dto.MovementListResponse
	switch {
	case itemID != "":
		out, err = h.uc.ListMovementsByItem(companyID, itemID, from, to, page.Limit, page.Offset)
	case warehouseID != "":
		out, err = h.uc.ListMovementsByWarehouse(companyID, warehouseID, from, to, page.Limit, page.Offset)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id o warehouse_id requerido"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar nivel contra la suma del ledger
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true   "Item (UUID)"
// @Param        warehouse_id  query  string  true   "Bodega (UUID)"
// @Param        bin_id        query  string  false  "Bin opcional"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/ledger/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	companyID, _, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Reconcile(companyID, c.Query("item_id"), c.Query("warehouse_id"), c.Query("bin_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
