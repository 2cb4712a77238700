package repository

import (
	"context"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// ItemFilter filtros del listado de catálogo.
type ItemFilter struct {
	ActiveOnly  bool
	TrackedOnly bool
	Search      string // contiene, sin distinguir mayúsculas
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe en el tenant.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Item, error)
	List(ctx context.Context, tenantID string, f ItemFilter) ([]entity.Item, error)
	// UpdateStock escribe la proyección de stock; solo la usa el ledger.
	UpdateStock(ctx context.Context, tenantID, id string, stock int, at time.Time) error
}
