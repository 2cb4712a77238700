package repository

import (
	"context"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// TransactionFilter filtros del historial. Limit 0 = sin límite.
type TransactionFilter struct {
	From   *time.Time // inclusive
	Until  *time.Time // exclusivo
	Status string
	Limit  int
	Offset int
}

// TransactionRepository define el puerto de persistencia para Transaction (DIP).
type TransactionRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Transaction, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transaction, error)
	GetByClientRef(ctx context.Context, tenantID, clientRef string) (*entity.Transaction, error)
	// NextSequence reserva el siguiente consecutivo diario del tenant (day = YYYYMMDD).
	NextSequence(ctx context.Context, tenantID, day string) (int, error)
	MarkVoided(ctx context.Context, tx *entity.Transaction) error
	// List devuelve la página pedida (más reciente primero) y el total que cumple el filtro.
	List(ctx context.Context, tenantID string, f TransactionFilter) ([]entity.Transaction, int, error)
}
