package sales

import (
	"context"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y ventas.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// InventoryUseCase interfaz para integrar ventas con el ledger de stock.
// Ambos métodos usan los repositorios del caller (misma transacción); si retornan error
// (ej: ErrInsufficientStock), el caller debe hacer rollback.
type InventoryUseCase interface {
	RegisterSaleInTx(
		ctx context.Context,
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
		item *entity.Item,
		qty int,
		transactionID string,
		actor access.Principal,
		now time.Time,
	) error
	ReturnSaleInTx(
		ctx context.Context,
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
		tenantID, transactionID, reason string,
		actor access.Principal,
		now time.Time,
	) ([]entity.StockAdjustment, error)
}
