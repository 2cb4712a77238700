package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

const maxHistoryPage = 200

// Movement movimiento a aplicar sobre un ítem ya bloqueado.
type Movement struct {
	Type          string
	Quantity      int
	Reason        string
	TransactionID string
}

// LedgerUseCase registra ajustes de stock de forma transaccional: bloquea la fila del ítem
// (SELECT FOR UPDATE), agrega la entrada al ledger y actualiza la proyección, todo o nada.
type LedgerUseCase struct {
	txRunner   TxRunner
	itemRepo   repository.ItemRepository
	ledgerRepo repository.StockAdjustmentRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:   txRunner,
		itemRepo:   itemRepo,
		ledgerRepo: ledgerRepo,
		log:        log,
		now:        time.Now,
	}
}

// Adjust aplica un ajuste manual (add, subtract, set). sale y void_return los genera solo el sistema.
func (uc *LedgerUseCase) Adjust(ctx context.Context, actor access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
	if err := access.Require(actor.Role, access.PermManageStock); err != nil {
		return nil, err
	}
	if err := stock.ValidateUserAdjustment(in.AdjustmentType, in.Quantity); err != nil {
		return nil, err
	}

	now := uc.now()
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, ledgerRepo repository.StockAdjustmentRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, actor.TenantID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !item.TrackStock {
			return domain.Invalid("Stok tidak dilacak untuk item %s", item.Name)
		}
		adj, err = uc.ApplyInTx(ctx, itemRepo, ledgerRepo, item, Movement{
			Type:     in.AdjustmentType,
			Quantity: in.Quantity,
			Reason:   in.Reason,
		}, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("item_id", itemID).
		Str("type", adj.Type).
		Int("stock_before", adj.StockBefore).
		Int("stock_after", adj.StockAfter).
		Msg("stock ajustado")
	return adj, nil
}

// ApplyInTx aplica el movimiento usando los repositorios del caller (misma transacción).
// item debe venir de GetForUpdate; se actualiza en memoria con el stock resultante.
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	item *entity.Item,
	m Movement,
	actor access.Principal,
	now time.Time,
) (*entity.StockAdjustment, error) {
	after, err := stock.Apply(item.Stock, m.Type, m.Quantity)
	if err != nil {
		return nil, err
	}
	adj := &entity.StockAdjustment{
		ID:            uuid.New().String(),
		TenantID:      item.TenantID,
		ItemID:        item.ID,
		ItemName:      item.Name,
		Type:          m.Type,
		Quantity:      m.Quantity,
		StockBefore:   item.Stock,
		StockAfter:    after,
		Reason:        m.Reason,
		TransactionID: m.TransactionID,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
	}
	if err := ledgerRepo.Create(ctx, adj); err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}
	if err := itemRepo.UpdateStock(ctx, item.TenantID, item.ID, after, now); err != nil {
		return nil, fmt.Errorf("update stock projection: %w", err)
	}
	item.Stock = after
	item.UpdatedAt = now
	return adj, nil
}

// RegisterSaleInTx descuenta stock por una venta. Si no alcanza devuelve ErrInsufficientStock
// y el caller debe hacer rollback.
func (uc *LedgerUseCase) RegisterSaleInTx(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	item *entity.Item,
	qty int,
	transactionID string,
	actor access.Principal,
	now time.Time,
) error {
	if item.Stock < qty {
		return domain.InsufficientStock(item.Name, item.Stock)
	}
	_, err := uc.ApplyInTx(ctx, itemRepo, ledgerRepo, item, Movement{
		Type:          entity.AdjustSale,
		Quantity:      qty,
		TransactionID: transactionID,
	}, actor, now)
	return err
}

// ReturnSaleInTx compensa cada entrada sale de la transacción con un void_return de la misma cantidad.
func (uc *LedgerUseCase) ReturnSaleInTx(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	tenantID, transactionID, reason string,
	actor access.Principal,
	now time.Time,
) ([]entity.StockAdjustment, error) {
	sales, err := ledgerRepo.ListByTransaction(ctx, tenantID, transactionID, entity.AdjustSale)
	if err != nil {
		return nil, fmt.Errorf("list sale entries: %w", err)
	}
	out := make([]entity.StockAdjustment, 0, len(sales))
	for _, s := range sales {
		item, err := itemRepo.GetForUpdate(ctx, tenantID, s.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("item %s de la venta %s: %w", s.ItemID, transactionID, domain.ErrNotFound)
		}
		adj, err := uc.ApplyInTx(ctx, itemRepo, ledgerRepo, item, Movement{
			Type:          entity.AdjustVoidReturn,
			Quantity:      s.Quantity,
			Reason:        reason,
			TransactionID: transactionID,
		}, actor, now)
		if err != nil {
			return nil, err
		}
		out = append(out, *adj)
	}
	return out, nil
}

// Get devuelve el ítem con su stock actual.
func (uc *LedgerUseCase) Get(ctx context.Context, actor access.Principal, itemID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// History página del historial de un ítem, más reciente primero.
func (uc *LedgerUseCase) History(ctx context.Context, actor access.Principal, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	if err := access.Require(actor.Role, access.PermManageStock); err != nil {
		return nil, err
	}
	if _, err := uc.Get(ctx, actor, itemID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	if offset < 0 {
		offset = 0
	}
	return uc.ledgerRepo.ListByItem(ctx, actor.TenantID, itemID, limit, offset)
}

// Alerts ítems activos con control de stock en Habis o Hampir Habis.
func (uc *LedgerUseCase) Alerts(ctx context.Context, actor access.Principal) ([]stock.Alert, error) {
	if err := access.Require(actor.Role, access.PermManageStock); err != nil {
		return nil, err
	}
	items, err := uc.itemRepo.List(ctx, actor.TenantID, repository.ItemFilter{ActiveOnly: true, TrackedOnly: true})
	if err != nil {
		return nil, err
	}
	return stock.Alerts(items), nil
}

// Summary contadores del inventario más los ítems controlados; lowOnly deja solo los que tienen alerta.
func (uc *LedgerUseCase) Summary(ctx context.Context, actor access.Principal, lowOnly bool) (stock.Summary, []entity.Item, error) {
	if err := access.Require(actor.Role, access.PermManageStock); err != nil {
		return stock.Summary{}, nil, err
	}
	items, err := uc.itemRepo.List(ctx, actor.TenantID, repository.ItemFilter{ActiveOnly: true, TrackedOnly: true})
	if err != nil {
		return stock.Summary{}, nil, err
	}
	summary := stock.Summarize(items)
	if !lowOnly {
		return summary, items, nil
	}
	low := make([]entity.Item, 0)
	for _, it := range items {
		if it.StockStatus() != entity.StockAvailable {
			low = append(low, it)
		}
	}
	return summary, low, nil
}
