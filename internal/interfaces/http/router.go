package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/production"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC      *usecase.ItemUseCase
	WarehouseUC *usecase.WarehouseUseCase
	BOMUC       *usecase.BOMUseCase
	LedgerUC    *ledger.StockLedgerUseCase
	OrderUC     *production.OrderUseCase
	CompleteUC  *production.CompleteOrderUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el API es protegido (Bearer Token).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Las rutas que mutan stock exigen rol de bodega; las consultas solo token.
	canMutate := RequireRole("admin", "bodeguero")

	// Items (catálogo)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Ledger de stock (operaciones y consultas)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Post("/receive", canMutate, ledgerHandler.Receive)
	ledgerGroup.Post("/issue", canMutate, ledgerHandler.Issue)
	ledgerGroup.Post("/adjust", canMutate, ledgerHandler.Adjust)
	ledgerGroup.Post("/reserve", canMutate, ledgerHandler.Reserve)
	ledgerGroup.Post("/release", canMutate, ledgerHandler.Release)
	ledgerGroup.Post("/transfer", canMutate, ledgerHandler.Transfer)
	ledgerGroup.Get("/levels", ledgerHandler.GetLevel)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)
	ledgerGroup.Get("/reconcile", ledgerHandler.Reconcile)

	// BOMs
	boms := protected.Group("/boms")
	bomHandler := NewBOMHandler(deps.BOMUC)
	boms.Post("/", bomHandler.Create)
	boms.Post("/:id/activate", bomHandler.Activate)
	protected.Get("/products/:product_id/bom", bomHandler.GetActiveByProduct)

	// Órdenes de producción
	orders := protected.Group("/production-orders")
	productionHandler := NewProductionHandler(deps.OrderUC, deps.CompleteUC)
	orders.Post("/", canMutate, productionHandler.Create)
	orders.Get("/", productionHandler.List)
	orders.Get("/:id", productionHandler.GetByID)
	orders.Post("/:id/start", canMutate, productionHandler.Start)
	orders.Post("/:id/cancel", canMutate, productionHandler.Cancel)
	orders.Post("/:id/complete", canMutate, productionHandler.Complete)
}
