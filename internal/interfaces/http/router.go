package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Service *terminal.Service
	Hub     *Hub // nil: sin /ws
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")
	can := RequireCapability

	// Auth (público)
	authHandler := NewAuthHandler(deps.Service)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token de una sesión abierta)
	protected := api.Group("/", AuthMiddleware(deps.Service))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)

	// Perfil del negocio y password propio
	settingsHandler := NewSettingsHandler(deps.Service)
	protected.Put("/auth/password", settingsHandler.ChangePassword)
	protected.Get("/settings", settingsHandler.Get)
	protected.Put("/settings", can(access.PermSettings), settingsHandler.Update)

	// Karyawan (solo pemilik)
	users := protected.Group("/users", can(access.PermManageUsers))
	usersHandler := NewUsersHandler(deps.Service)
	users.Get("/", usersHandler.List)
	users.Post("/", usersHandler.Create)
	users.Put("/:id", usersHandler.Update)
	users.Delete("/:id", usersHandler.Deactivate)

	// Catálogo
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.Service)
	items.Get("/", can(access.PermViewItems), itemHandler.List)
	items.Post("/", can(access.PermManageItems), itemHandler.Create)
	items.Get("/:id", can(access.PermViewItems), itemHandler.GetByID)
	items.Put("/:id", can(access.PermManageItems), itemHandler.Update)
	items.Delete("/:id", can(access.PermManageItems), itemHandler.Delete)

	// Ventas
	txs := protected.Group("/transactions")
	txHandler := NewTransactionHandler(deps.Service)
	txs.Post("/", can(access.PermPOS), txHandler.Create)
	txs.Get("/", can(access.PermViewHistory), txHandler.List)
	txs.Get("/:id", can(access.PermViewHistory), txHandler.GetByID)
	// sin middleware: el motivo se valida antes que la capacidad
	txs.Post("/:id/void", txHandler.Void)
	txs.Get("/:id/receipt", can(access.PermViewHistory), txHandler.Receipt)
	txs.Get("/:id/receipt.pdf", can(access.PermViewHistory), txHandler.ReceiptPDF)

	// Stock (solo pemilik)
	stockGroup := protected.Group("/stock", can(access.PermManageStock))
	stockHandler := NewStockHandler(deps.Service)
	stockGroup.Get("/alerts", stockHandler.Alerts)
	stockGroup.Get("/summary", stockHandler.Summary)
	stockGroup.Post("/:item_id/adjust", stockHandler.Adjust)
	stockGroup.Get("/:item_id/history", stockHandler.History)

	// Reportes
	reports := protected.Group("/reports", can(access.PermViewReports))
	reportHandler := NewReportHandler(deps.Service)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/daily", reportHandler.Daily)
	reports.Get("/export", reportHandler.Export)

	dashboardHandler := NewDashboardHandler(deps.Service)
	protected.Get("/dashboard/today", can(access.PermViewDashboard), dashboardHandler.Today)

	// Terminal: carrito y cobro de la sesión
	pos := protected.Group("/pos", can(access.PermPOS))
	posHandler := NewPOSHandler(deps.Service)
	pos.Get("/cart", posHandler.Cart)
	pos.Delete("/cart", posHandler.Clear)
	pos.Post("/cart/items", posHandler.AddItem)
	pos.Put("/cart/items/:item_id", posHandler.SetQty)
	pos.Delete("/cart/items/:item_id", posHandler.RemoveItem)
	pos.Post("/cart/items/:item_id/increment", posHandler.Increment)
	pos.Post("/cart/items/:item_id/decrement", posHandler.Decrement)
	pos.Post("/checkout", posHandler.BeginCheckout)
	pos.Post("/checkout/cancel", posHandler.CancelCheckout)
	pos.Post("/pay", posHandler.Pay)

	if deps.Hub != nil {
		protected.Get("/ws", upgradeOnly, deps.Hub.Handler())
	}
}
