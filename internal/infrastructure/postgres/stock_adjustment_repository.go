package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

const adjustmentColumns = `id, tenant_id, item_id, item_name, adjustment_type, quantity, stock_before, stock_after,
	reason, transaction_id, created_by, created_by_name, created_at`

// StockAdjustmentRepo ledger de stock sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create agrega una entrada al ledger.
func (r *StockAdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.TenantID, adj.ItemID, adj.ItemName, adj.Type, adj.Quantity,
		adj.StockBefore, adj.StockAfter, adj.Reason, nullIfEmpty(adj.TransactionID),
		adj.CreatedBy, adj.CreatedByName, adj.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock adjustment: %w", err)
	}
	return nil
}

// ListByItem historial del ítem, más reciente primero (seq desempata entradas del mismo instante).
func (r *StockAdjustmentRepo) ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	if !validID(itemID) {
		return []entity.StockAdjustment{}, nil
	}
	query := `SELECT ` + adjustmentColumns + ` FROM stock_adjustments
		WHERE tenant_id = $1 AND item_id = $2
		ORDER BY created_at DESC, seq DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	return collectAdjustments(rows)
}

// ListByTransaction entradas del tipo indicado originadas por la venta, en orden de creación.
func (r *StockAdjustmentRepo) ListByTransaction(ctx context.Context, tenantID, transactionID, adjType string) ([]entity.StockAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM stock_adjustments
		WHERE tenant_id = $1 AND transaction_id = $2 AND adjustment_type = $3
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, tenantID, transactionID, adjType)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments by transaction: %w", err)
	}
	return collectAdjustments(rows)
}

func collectAdjustments(rows pgx.Rows) ([]entity.StockAdjustment, error) {
	defer rows.Close()
	list := make([]entity.StockAdjustment, 0)
	for rows.Next() {
		var a entity.StockAdjustment
		var txID *string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.ItemID, &a.ItemName, &a.Type, &a.Quantity,
			&a.StockBefore, &a.StockAfter, &a.Reason, &txID, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		a.TransactionID = emptyIfNull(txID)
		list = append(list, a)
	}
	return list, rows.Err()
}
