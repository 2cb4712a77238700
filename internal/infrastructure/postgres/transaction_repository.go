package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, tenant_id, transaction_number, client_ref, total, payment_method, payment_amount,
	change_amount, payment_reference, status, cashier_id, cashier_name, void_reason, voided_by, voided_by_name,
	voided_at, created_at`

// TransactionRepo implementación de TransactionRepository (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste cabecera y líneas. Un client_ref repetido en el tenant devuelve ErrDuplicate.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.Number, nullIfEmpty(t.ClientRef), t.Total, t.PaymentMethod, t.PaymentAmount,
		t.Change, t.PaymentReference, t.Status, t.CashierID, t.CashierName, t.VoidReason,
		nullIfEmpty(t.VoidedBy), t.VoidedByName, t.VoidedAt, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	for i, l := range t.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, line_no, item_id, name, price, qty, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, i+1, l.ItemID, l.Name, l.Price, l.Qty, l.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert transaction line: %w", err)
		}
	}
	return nil
}

func (r *TransactionRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where
	t, err := scanTransaction(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID obtiene una venta con sus líneas.
func (r *TransactionRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Transaction, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate obtiene la venta bloqueando la fila (anulación).
func (r *TransactionRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transaction, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// GetByClientRef busca la venta registrada con ese identificador de reintento.
func (r *TransactionRepo) GetByClientRef(ctx context.Context, tenantID, clientRef string) (*entity.Transaction, error) {
	return r.getOne(ctx, `tenant_id = $1 AND client_ref = $2`, tenantID, clientRef)
}

// NextSequence reserva el consecutivo diario con un upsert; la fila queda bloqueada hasta el commit.
func (r *TransactionRepo) NextSequence(ctx context.Context, tenantID, day string) (int, error) {
	var seq int
	err := r.q.QueryRow(ctx, `
		INSERT INTO transaction_counters (tenant_id, day, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, day) DO UPDATE SET last_seq = transaction_counters.last_seq + 1
		RETURNING last_seq`, tenantID, day).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next transaction sequence: %w", err)
	}
	return seq, nil
}

// MarkVoided guarda estado y campos de anulación. Las líneas no se tocan.
func (r *TransactionRepo) MarkVoided(ctx context.Context, t *entity.Transaction) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transactions SET status = $3, void_reason = $4, voided_by = $5, voided_by_name = $6, voided_at = $7
		WHERE tenant_id = $1 AND id = $2`,
		t.TenantID, t.ID, t.Status, t.VoidReason, nullIfEmpty(t.VoidedBy), t.VoidedByName, t.VoidedAt,
	)
	if err != nil {
		return fmt.Errorf("void transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List página del historial (más reciente primero) y total que cumple el filtro.
func (r *TransactionRepo) List(ctx context.Context, tenantID string, f repository.TransactionFilter) ([]entity.Transaction, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.Until != nil {
		args = append(args, *f.Until)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where +
		` ORDER BY created_at DESC, transaction_number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	ptrs := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		ptrs = append(ptrs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadLines(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	list := make([]entity.Transaction, 0, len(ptrs))
	for _, t := range ptrs {
		list = append(list, *t)
	}
	return list, total, nil
}

// loadLines carga las líneas de todas las ventas en una sola consulta.
func (r *TransactionRepo) loadLines(ctx context.Context, txs []*entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(txs))
	byID := make(map[string]*entity.Transaction, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ID)
		byID[t.ID] = t
		t.Lines = make([]entity.TransactionLine, 0)
	}
	rows, err := r.q.Query(ctx, `
		SELECT transaction_id, item_id, name, price, qty, subtotal
		FROM transaction_items WHERE transaction_id = ANY($1::uuid[])
		ORDER BY transaction_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transaction lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var txID string
		var l entity.TransactionLine
		if err := rows.Scan(&txID, &l.ItemID, &l.Name, &l.Price, &l.Qty, &l.Subtotal); err != nil {
			return fmt.Errorf("scan transaction line: %w", err)
		}
		if t, ok := byID[txID]; ok {
			t.Lines = append(t.Lines, l)
		}
	}
	return rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var clientRef, voidedBy *string
	err := row.Scan(&t.ID, &t.TenantID, &t.Number, &clientRef, &t.Total, &t.PaymentMethod, &t.PaymentAmount,
		&t.Change, &t.PaymentReference, &t.Status, &t.CashierID, &t.CashierName, &t.VoidReason,
		&voidedBy, &t.VoidedByName, &t.VoidedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.ClientRef = emptyIfNull(clientRef)
	t.VoidedBy = emptyIfNull(voidedBy)
	return &t, nil
}
