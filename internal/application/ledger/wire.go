package ledger

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/application/analytics"
	"github.com/jhoicas/aikasir-api/internal/application/auth"
	"github.com/jhoicas/aikasir-api/internal/application/inventory"
	"github.com/jhoicas/aikasir-api/internal/application/sales"
	"github.com/jhoicas/aikasir-api/internal/application/usecase"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// TxRunner transacciones de inventario y de ventas sobre el mismo almacenamiento.
type TxRunner interface {
	inventory.TxRunner
	sales.SalesTxRunner
}

// Repositories almacenamiento del ledger (PostgreSQL o memoria).
type Repositories struct {
	Tx           TxRunner
	Items        repository.ItemRepository
	Transactions repository.TransactionRepository
	Adjustments  repository.StockAdjustmentRepository
	Users        repository.UserRepository
	Tenants      repository.TenantRepository
}

// Options parámetros de negocio del ledger.
type Options struct {
	Location         *time.Location
	DefaultThreshold int
}

// New arma los casos de uso sobre los repositorios y devuelve el backend local.
func New(r Repositories, opts Options, log *logger.Logger) *Backend {
	ledgerUC := inventory.NewLedgerUseCase(r.Tx, r.Items, r.Adjustments, log.Named("inventory"))
	return &Backend{
		Auth:      auth.NewAuthUseCase(r.Users, r.Tenants, log.Named("auth")),
		Items:     usecase.NewItemUseCase(r.Tx, r.Items, ledgerUC, opts.DefaultThreshold, log.Named("items")),
		Inventory: ledgerUC,
		Sales:     sales.NewSalesUseCase(r.Tx, ledgerUC, r.Transactions, r.Tenants, opts.Location, log.Named("sales")),
		Reports:   analytics.NewReportUseCase(r.Transactions, r.Items, opts.Location),
	}
}
