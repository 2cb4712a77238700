package repository

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// StockAdjustmentRepository puerto del ledger de stock. Solo agrega; nunca actualiza ni borra.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	// ListByItem más reciente primero.
	ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]entity.StockAdjustment, error)
	// ListByTransaction entradas del tipo indicado originadas por la transacción, en orden de creación.
	ListByTransaction(ctx context.Context, tenantID, transactionID, adjType string) ([]entity.StockAdjustment, error)
}
