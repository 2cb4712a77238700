package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/aikasir-api/internal/application/inventory"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/sales"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.SalesTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos de ítems y ledger atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewItemRepository(tx), NewStockAdjustmentRepository(tx))
	})
}

// RunSales inicia una transacción con repos de inventario y ventas (registrar y anular ventas).
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	txRepo repository.TransactionRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewItemRepository(tx), NewStockAdjustmentRepository(tx), NewTransactionRepository(tx))
	})
}

// Repositories repositorios sobre el pool, listos para ledger.New.
func Repositories(pool *pgxpool.Pool) ledger.Repositories {
	return ledger.Repositories{
		Tx:           NewTxRunner(pool),
		Items:        NewItemRepository(pool),
		Transactions: NewTransactionRepository(pool),
		Adjustments:  NewStockAdjustmentRepository(pool),
		Users:        NewUserRepository(pool),
		Tenants:      NewTenantRepository(pool),
	}
}
