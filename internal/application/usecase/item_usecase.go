package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/inventory"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// ItemUseCase casos de uso CRUD del catálogo. El stock se maneja solo vía el ledger.
type ItemUseCase struct {
	txRunner         inventory.TxRunner
	repo             repository.ItemRepository
	ledger           *inventory.LedgerUseCase
	defaultThreshold int
	log              *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	txRunner inventory.TxRunner,
	repo repository.ItemRepository,
	ledger *inventory.LedgerUseCase,
	defaultThreshold int,
	log *logger.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner:         txRunner,
		repo:             repo,
		ledger:           ledger,
		defaultThreshold: defaultThreshold,
		log:              log,
	}
}

// List lista el catálogo del tenant ordenado por nombre. Por defecto solo los activos.
func (uc *ItemUseCase) List(ctx context.Context, actor access.Principal, q dto.ItemQuery) ([]entity.Item, error) {
	activeOnly := true
	if q.ActiveOnly != nil {
		activeOnly = *q.ActiveOnly
	}
	return uc.repo.List(ctx, actor.TenantID, repository.ItemFilter{
		ActiveOnly: activeOnly,
		Search:     strings.TrimSpace(q.Search),
	})
}

// Get obtiene un ítem del tenant.
func (uc *ItemUseCase) Get(ctx context.Context, actor access.Principal, id string) (*entity.Item, error) {
	item, err := uc.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// Create crea un ítem. Con control de stock y stock inicial, el stock entra como un ajuste set.
func (uc *ItemUseCase) Create(ctx context.Context, actor access.Principal, in dto.CreateItemRequest) (*entity.Item, error) {
	if err := access.Require(actor.Role, access.PermManageItems); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("Nama barang wajib diisi")
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, domain.Invalid("Stok tidak boleh negatif")
	}
	if in.Stock > stock.MaxQuantity {
		return nil, domain.ErrOutOfRange
	}
	threshold := uc.defaultThreshold
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, domain.Invalid("Batas stok menipis tidak boleh negatif")
		}
		threshold = *in.LowStockThreshold
	}

	now := time.Now()
	item := &entity.Item{
		ID:                uuid.New().String(),
		TenantID:          actor.TenantID,
		Name:              name,
		Price:             in.Price,
		IsActive:          true,
		TrackStock:        in.TrackStock,
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if !in.TrackStock || in.Stock == 0 {
		if err := uc.repo.Create(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	}

	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, ledgerRepo repository.StockAdjustmentRepository) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		_, err := uc.ledger.ApplyInTx(ctx, itemRepo, ledgerRepo, item, inventory.Movement{
			Type:     entity.AdjustSet,
			Quantity: in.Stock,
			Reason:   "Stok awal",
		}, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("item_id", item.ID).Int("stock", item.Stock).Msg("item creado con stock inicial")
	return item, nil
}

// Update actualiza un ítem. No permite modificar el stock (se maneja vía ajustes).
func (uc *ItemUseCase) Update(ctx context.Context, actor access.Principal, id string, in dto.UpdateItemRequest) (*entity.Item, error) {
	if err := access.Require(actor.Role, access.PermManageItems); err != nil {
		return nil, err
	}
	item, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("Nama barang wajib diisi")
		}
		item.Name = name
	}
	if in.Price != nil {
		if err := checkPrice(*in.Price); err != nil {
			return nil, err
		}
		item.Price = *in.Price
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if in.TrackStock != nil {
		item.TrackStock = *in.TrackStock
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, domain.Invalid("Batas stok menipis tidak boleh negatif")
		}
		item.LowStockThreshold = *in.LowStockThreshold
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete desactiva el ítem; nunca se borra porque el historial lo referencia.
func (uc *ItemUseCase) Delete(ctx context.Context, actor access.Principal, id string) error {
	if err := access.Require(actor.Role, access.PermManageItems); err != nil {
		return err
	}
	item, err := uc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	item.IsActive = false
	item.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, item)
}

func checkPrice(p money.Amount) error {
	if p < 0 {
		return domain.Invalid("Harga tidak boleh negatif")
	}
	if p > money.MaxPrice {
		return domain.ErrOutOfRange
	}
	return nil
}
