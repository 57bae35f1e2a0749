package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tiendas-api/internal/application/auth"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	LocationUC *usecase.LocationUseCase
	InvoiceUC  *usecase.InvoiceUseCase
	MovementUC *usecase.MovementUseCase
	StockUC    *usecase.StockUseCase
	ReceiptUC  *usecase.ReceiptUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	const (
		admin   = entity.RoleAdmin
		keeper  = entity.RoleStoreKeeper
		cashier = entity.RoleCashier
	)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/users", RequireRole(admin), authHandler.Register)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(admin), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	locationHandler := NewLocationHandler(deps.LocationUC)
	protected.Post("/stores", RequireRole(admin), locationHandler.CreateStore)
	protected.Get("/stores", locationHandler.ListStores)
	protected.Get("/stores/:id", locationHandler.Get(entity.LocationStore))
	protected.Post("/shops", RequireRole(admin), locationHandler.CreateShop)
	protected.Get("/shops", locationHandler.ListShops)
	protected.Get("/shops/:id", locationHandler.Get(entity.LocationShop))

	invoices := protected.Group("/invoices", RequireRole(admin, keeper))
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)

	movementHandler := NewMovementHandler(deps.MovementUC, deps.StockUC, deps.ReceiptUC)
	protected.Post("/placements", RequireRole(admin, keeper), movementHandler.Place)

	transfers := protected.Group("/transfers")
	transfers.Post("/", RequireRole(admin, keeper), movementHandler.Transfer)
	transfers.Get("/:id", movementHandler.GetTransfer)
	transfers.Put("/:id", RequireRole(admin, keeper), movementHandler.UpdateTransfer)
	transfers.Delete("/:id", RequireRole(admin, keeper), movementHandler.RevertTransfer)

	sales := protected.Group("/sales")
	sales.Post("/", RequireRole(admin, cashier), movementHandler.Sell)
	sales.Get("/:id", movementHandler.GetSale)
	sales.Get("/:id/receipt", movementHandler.SaleReceipt)

	// Inventario: /verify va antes que /:productId.
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC)
	inv.Get("/:kind/:locationId", inventoryHandler.ListRecords)
	inv.Get("/:kind/:locationId/verify", RequireRole(admin), inventoryHandler.Verify)
	inv.Get("/:kind/:locationId/:productId", inventoryHandler.GetRecord)

	protected.Get("/activities", inventoryHandler.ListActivities)
}
