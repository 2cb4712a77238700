package repository

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListByTenant empleados del negocio ordenados por nombre.
	ListByTenant(ctx context.Context, tenantID string) ([]entity.User, error)
	// Update guarda nombre, rol, estado y hash de password. ErrNotFound si no existe.
	Update(ctx context.Context, user *entity.User) error
}

// TenantRepository define el puerto de persistencia para Tenant (DIP).
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// Update guarda el perfil impreso en los comprobantes. ErrNotFound si no existe.
	Update(ctx context.Context, tenant *entity.Tenant) error
}
