package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, tenant_id, name, price, is_active, track_stock, stock, low_stock_threshold, created_at, updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.TenantID, &it.Name, &it.Price, &it.IsActive, &it.TrackStock,
		&it.Stock, &it.LowStockThreshold, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo ítem. El stock inicial lo escribe el ledger.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TenantID, item.Name, item.Price, item.IsActive, item.TrackStock,
		item.Stock, item.LowStockThreshold, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Update actualiza los datos del ítem. No modifica stock (se maneja vía ajustes).
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $3, price = $4, is_active = $5, track_stock = $6, low_stock_threshold = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		item.TenantID, item.ID, item.Name, item.Price, item.IsActive, item.TrackStock,
		item.LowStockThreshold, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un ítem del tenant.
func (r *ItemRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE tenant_id = $1 AND id = $2`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return it, nil
}

// List lista el catálogo del tenant ordenado por nombre.
func (r *ItemRepo) List(ctx context.Context, tenantID string, f repository.ItemFilter) ([]entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE tenant_id = $1`
	args := []any{tenantID}
	if f.ActiveOnly {
		query += ` AND is_active`
	}
	if f.TrackedOnly {
		query += ` AND track_stock`
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		query += fmt.Sprintf(` AND name ILIKE $%d ESCAPE '\'`, len(args))
	}
	query += ` ORDER BY lower(name), id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	list := make([]entity.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, *it)
	}
	return list, rows.Err()
}

// UpdateStock escribe la proyección de stock (usado solo por el ledger, dentro de su tx).
func (r *ItemRepo) UpdateStock(ctx context.Context, tenantID, id string, stock int, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE items SET stock = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, stock, at,
	)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
