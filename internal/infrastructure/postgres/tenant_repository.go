package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación del puerto TenantRepository sobre PostgreSQL.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador de persistencia para negocios.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

// Create persiste un nuevo negocio.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tenants (id, name, address, phone, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Address, t.Phone, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un negocio por ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	if !validID(id) {
		return nil, nil
	}
	var t entity.Tenant
	err := r.q.QueryRow(ctx,
		`SELECT id, name, address, phone, created_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Address, &t.Phone, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// Update guarda nombre, dirección y teléfono del negocio.
func (r *TenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE tenants SET name = $2, address = $3, phone = $4 WHERE id = $1`,
		t.ID, t.Name, t.Address, t.Phone,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
