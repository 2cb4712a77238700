package inventory

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la entrada del ledger y la proyección de stock del ítem se escriban juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
	) error) error
}
