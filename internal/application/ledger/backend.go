// Package ledger adapta los casos de uso locales (PostgreSQL o memoria) al puerto terminal.Backend.
package ledger

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/application/analytics"
	"github.com/jhoicas/aikasir-api/internal/application/auth"
	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/inventory"
	"github.com/jhoicas/aikasir-api/internal/application/sales"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/application/usecase"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

var _ terminal.Backend = (*Backend)(nil)

// Backend sistema de registro local.
type Backend struct {
	Auth      *auth.AuthUseCase
	Items     *usecase.ItemUseCase
	Inventory *inventory.LedgerUseCase
	Sales     *sales.SalesUseCase
	Reports   *analytics.ReportUseCase
}

func (b *Backend) Login(ctx context.Context, email, password string) (access.Principal, *entity.Tenant, error) {
	return b.Auth.Login(ctx, dto.LoginRequest{Email: email, Password: password})
}

func (b *Backend) Tenant(ctx context.Context, p access.Principal) (*entity.Tenant, error) {
	return b.Auth.Tenant(ctx, p)
}

func (b *Backend) ListUsers(ctx context.Context, p access.Principal) ([]entity.User, error) {
	return b.Auth.ListUsers(ctx, p)
}

func (b *Backend) CreateUser(ctx context.Context, p access.Principal, in dto.CreateUserRequest) (*entity.User, error) {
	return b.Auth.CreateUser(ctx, p, in)
}

func (b *Backend) UpdateUser(ctx context.Context, p access.Principal, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	return b.Auth.UpdateUser(ctx, p, id, in)
}

func (b *Backend) DeactivateUser(ctx context.Context, p access.Principal, id string) error {
	return b.Auth.DeactivateUser(ctx, p, id)
}

func (b *Backend) ChangePassword(ctx context.Context, p access.Principal, current, next string) error {
	return b.Auth.ChangePassword(ctx, p, current, next)
}

func (b *Backend) UpdateTenant(ctx context.Context, p access.Principal, in dto.UpdateSettingsRequest) (*entity.Tenant, error) {
	return b.Auth.UpdateTenant(ctx, p, in)
}

func (b *Backend) ListItems(ctx context.Context, p access.Principal, q dto.ItemQuery) ([]entity.Item, error) {
	return b.Items.List(ctx, p, q)
}

func (b *Backend) GetItem(ctx context.Context, p access.Principal, id string) (*entity.Item, error) {
	return b.Items.Get(ctx, p, id)
}

func (b *Backend) CreateItem(ctx context.Context, p access.Principal, in dto.CreateItemRequest) (*entity.Item, error) {
	return b.Items.Create(ctx, p, in)
}

func (b *Backend) UpdateItem(ctx context.Context, p access.Principal, id string, in dto.UpdateItemRequest) (*entity.Item, error) {
	return b.Items.Update(ctx, p, id, in)
}

func (b *Backend) DeleteItem(ctx context.Context, p access.Principal, id string) error {
	return b.Items.Delete(ctx, p, id)
}

func (b *Backend) CreateTransaction(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	return b.Sales.Create(ctx, p, in)
}

func (b *Backend) VoidTransaction(ctx context.Context, p access.Principal, id, reason string) (*entity.Transaction, error) {
	return b.Sales.Void(ctx, p, id, reason)
}

func (b *Backend) GetTransaction(ctx context.Context, p access.Principal, id string) (*entity.Transaction, error) {
	return b.Sales.Get(ctx, p, id)
}

func (b *Backend) ListTransactions(ctx context.Context, p access.Principal, q dto.TransactionQuery) ([]entity.Transaction, int, error) {
	return b.Sales.List(ctx, p, q)
}

func (b *Backend) AdjustStock(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
	return b.Inventory.Adjust(ctx, p, itemID, in)
}

func (b *Backend) StockHistory(ctx context.Context, p access.Principal, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	return b.Inventory.History(ctx, p, itemID, limit, offset)
}

func (b *Backend) StockAlerts(ctx context.Context, p access.Principal) ([]stock.Alert, error) {
	return b.Inventory.Alerts(ctx, p)
}

func (b *Backend) StockSummary(ctx context.Context, p access.Principal, lowOnly bool) (stock.Summary, []entity.Item, error) {
	return b.Inventory.Summary(ctx, p, lowOnly)
}

func (b *Backend) ReportSummary(ctx context.Context, p access.Principal, start, end string) (*report.Report, error) {
	return b.Reports.Summary(ctx, p, start, end)
}

func (b *Backend) DailyReport(ctx context.Context, p access.Principal, date string) (*report.DayReport, error) {
	return b.Reports.Daily(ctx, p, date)
}

func (b *Backend) ExportReport(ctx context.Context, p access.Principal, start, end string) (report.Document, error) {
	return b.Reports.Export(ctx, p, start, end)
}

func (b *Backend) Dashboard(ctx context.Context, p access.Principal) (*report.Dashboard, error) {
	return b.Reports.Today(ctx, p)
}
