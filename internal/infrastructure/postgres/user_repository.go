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

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, tenant_id, email, password_hash, name, role, is_active, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. El email es único en todo el sistema.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `id = $1`, id)
}

// GetByEmail obtiene un usuario por email (cualquier tenant).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *UserRepo) findOne(ctx context.Context, where string, args ...any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListByTenant empleados del negocio ordenados por nombre.
func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string) ([]entity.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY lower(name), id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	list := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update guarda nombre, rol, estado y hash. El email no cambia.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if !validID(user.ID) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE users SET name = $2, role = $3, is_active = $4, password_hash = $5, updated_at = $6
		WHERE id = $1`,
		user.ID, user.Name, user.Role, user.IsActive, user.PasswordHash, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
