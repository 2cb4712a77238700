// Package terminal es el núcleo del terminal POS: sesiones autenticadas, carrito, máquina de
// estados del checkout y las intenciones de anulación y ajuste de stock. Todo dato
// autoritativo (ítems, ventas, ledger) vive detrás del puerto Backend.
package terminal

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

// Backend sistema de registro. Implementaciones: API remota (infrastructure/remote)
// y ledger local sobre PostgreSQL o memoria (application/ledger).
//
// Los errores llegan clasificados con domain.Kind: Validation, Conflict, Auth, Forbidden,
// NotFound o Transient. Un Transient nunca significa que la operación no ocurrió.
type Backend interface {
	Login(ctx context.Context, email, password string) (access.Principal, *entity.Tenant, error)
	Tenant(ctx context.Context, p access.Principal) (*entity.Tenant, error)
	UpdateTenant(ctx context.Context, p access.Principal, in dto.UpdateSettingsRequest) (*entity.Tenant, error)
	ChangePassword(ctx context.Context, p access.Principal, current, next string) error

	ListUsers(ctx context.Context, p access.Principal) ([]entity.User, error)
	CreateUser(ctx context.Context, p access.Principal, in dto.CreateUserRequest) (*entity.User, error)
	UpdateUser(ctx context.Context, p access.Principal, id string, in dto.UpdateUserRequest) (*entity.User, error)
	DeactivateUser(ctx context.Context, p access.Principal, id string) error

	ListItems(ctx context.Context, p access.Principal, q dto.ItemQuery) ([]entity.Item, error)
	GetItem(ctx context.Context, p access.Principal, id string) (*entity.Item, error)
	CreateItem(ctx context.Context, p access.Principal, in dto.CreateItemRequest) (*entity.Item, error)
	UpdateItem(ctx context.Context, p access.Principal, id string, in dto.UpdateItemRequest) (*entity.Item, error)
	DeleteItem(ctx context.Context, p access.Principal, id string) error

	CreateTransaction(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error)
	VoidTransaction(ctx context.Context, p access.Principal, id, reason string) (*entity.Transaction, error)
	GetTransaction(ctx context.Context, p access.Principal, id string) (*entity.Transaction, error)
	ListTransactions(ctx context.Context, p access.Principal, q dto.TransactionQuery) ([]entity.Transaction, int, error)

	AdjustStock(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error)
	StockHistory(ctx context.Context, p access.Principal, itemID string, limit, offset int) ([]entity.StockAdjustment, error)
	StockAlerts(ctx context.Context, p access.Principal) ([]stock.Alert, error)
	StockSummary(ctx context.Context, p access.Principal, lowOnly bool) (stock.Summary, []entity.Item, error)

	ReportSummary(ctx context.Context, p access.Principal, start, end string) (*report.Report, error)
	DailyReport(ctx context.Context, p access.Principal, date string) (*report.DayReport, error)
	ExportReport(ctx context.Context, p access.Principal, start, end string) (report.Document, error)
	Dashboard(ctx context.Context, p access.Principal) (*report.Dashboard, error)
}
