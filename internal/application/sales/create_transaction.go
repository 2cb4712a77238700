package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/domain/payment"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// SalesUseCase registra ventas y anulaciones. Stock y transacción se confirman juntos o nada.
type SalesUseCase struct {
	txRunner    SalesTxRunner
	inventoryUC InventoryUseCase
	txRepo      repository.TransactionRepository
	tenantRepo  repository.TenantRepository
	loc         *time.Location
	log         *logger.Logger
	now         func() time.Time
}

// NewSalesUseCase construye el caso de uso. loc es la zona horaria de la tienda (numeración y filtros por día).
func NewSalesUseCase(
	txRunner SalesTxRunner,
	inventoryUC InventoryUseCase,
	txRepo repository.TransactionRepository,
	tenantRepo repository.TenantRepository,
	loc *time.Location,
	log *logger.Logger,
) *SalesUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesUseCase{
		txRunner:    txRunner,
		inventoryUC: inventoryUC,
		txRepo:      txRepo,
		tenantRepo:  tenantRepo,
		loc:         loc,
		log:         log,
		now:         time.Now,
	}
}

type lineRequest struct {
	itemID string
	qty    int
}

// mergeLines valida las líneas y suma las repetidas conservando el orden de primera aparición.
func mergeLines(in []dto.TransactionLineRequest) ([]lineRequest, error) {
	if len(in) == 0 {
		return nil, domain.ErrCartEmpty
	}
	idx := make(map[string]int, len(in))
	out := make([]lineRequest, 0, len(in))
	for _, l := range in {
		id := strings.TrimSpace(l.ItemID)
		if id == "" {
			return nil, domain.Invalid("Barang wajib dipilih")
		}
		if l.Qty < 1 {
			return nil, domain.Invalid("Jumlah minimal 1")
		}
		if l.Qty > money.MaxQty {
			return nil, domain.ErrOutOfRange
		}
		if i, ok := idx[id]; ok {
			if out[i].qty+l.Qty > money.MaxQty {
				return nil, domain.ErrOutOfRange
			}
			out[i].qty += l.Qty
			continue
		}
		idx[id] = len(out)
		out = append(out, lineRequest{itemID: id, qty: l.Qty})
	}
	return out, nil
}

// Create registra la venta: congela nombre y precio de cada ítem, valida el pago,
// descuenta stock de los ítems controlados y asigna el número del día.
// Si ClientRef ya existe en el tenant devuelve la venta existente sin tocar el stock.
func (uc *SalesUseCase) Create(ctx context.Context, actor access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	if err := access.Require(actor.Role, access.PermPOS); err != nil {
		return nil, err
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	method, err := payment.ParseMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	clientRef := strings.TrimSpace(in.ClientRef)

	now := uc.now()
	var out *entity.Transaction
	replayed := false

	err = uc.txRunner.RunSales(ctx, func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
		txRepo repository.TransactionRepository,
	) error {
		// 1) Reintento del mismo checkout: devolver lo ya registrado.
		if clientRef != "" {
			existing, err := txRepo.GetByClientRef(ctx, actor.TenantID, clientRef)
			if err != nil {
				return err
			}
			if existing != nil {
				out, replayed = existing, true
				return nil
			}
		}

		// 2) Bloquear ítems en orden de ID para no interbloquear ventas concurrentes.
		order := make([]string, 0, len(lines))
		for _, l := range lines {
			order = append(order, l.itemID)
		}
		sort.Strings(order)
		items := make(map[string]*entity.Item, len(order))
		for _, id := range order {
			item, err := itemRepo.GetForUpdate(ctx, actor.TenantID, id)
			if err != nil {
				return err
			}
			if item == nil || !item.IsActive {
				return domain.Invalid("Barang tidak ditemukan atau tidak aktif")
			}
			items[id] = item
		}

		// 3) Snapshot de nombre y precio, total y pago.
		t := &entity.Transaction{
			ID:          uuid.New().String(),
			TenantID:    actor.TenantID,
			ClientRef:   clientRef,
			Status:      entity.TxStatusCompleted,
			CashierID:   actor.UserID,
			CashierName: actor.Name,
			CreatedAt:   now,
			Lines:       make([]entity.TransactionLine, 0, len(lines)),
		}
		for _, l := range lines {
			item := items[l.itemID]
			sub, err := item.Price.Mul(l.qty)
			if err != nil {
				return err
			}
			if t.Total, err = money.Add(t.Total, sub); err != nil {
				return err
			}
			t.Lines = append(t.Lines, entity.TransactionLine{
				ItemID:   item.ID,
				Name:     item.Name,
				Price:    item.Price,
				Qty:      l.qty,
				Subtotal: sub,
			})
		}
		tender, err := payment.Capture(t.Total, method, in.PaymentAmount, in.PaymentReference)
		if err != nil {
			return err
		}
		t.PaymentMethod = tender.Method
		t.PaymentAmount = tender.Amount
		t.Change = tender.Change
		t.PaymentReference = tender.Reference

		// 4) Salidas del ledger por cada ítem controlado. Sin stock suficiente: rollback.
		for _, l := range lines {
			item := items[l.itemID]
			if !item.TrackStock {
				continue
			}
			if err := uc.inventoryUC.RegisterSaleInTx(ctx, itemRepo, ledgerRepo, item, l.qty, t.ID, actor, now); err != nil {
				return err
			}
		}

		// 5) Número del día y persistencia.
		day := now.In(uc.loc).Format("20060102")
		seq, err := txRepo.NextSequence(ctx, actor.TenantID, day)
		if err != nil {
			return fmt.Errorf("reservar consecutivo: %w", err)
		}
		t.Number = FormatNumber(day, seq)
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		// Carrera con otro reintento del mismo checkout: el otro ganó, devolver su venta.
		if clientRef != "" && errors.Is(err, domain.ErrDuplicate) {
			existing, gerr := uc.txRepo.GetByClientRef(ctx, actor.TenantID, clientRef)
			if gerr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if replayed {
		uc.log.Info().Str("tenant_id", actor.TenantID).Str("client_ref", clientRef).Str("number", out.Number).Msg("venta repetida, se devuelve la existente")
		return out, nil
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("transaction_id", out.ID).
		Str("number", out.Number).
		Str("method", out.PaymentMethod).
		Int64("total", int64(out.Total)).
		Msg("venta registrada")
	return out, nil
}

// FormatNumber número legible de la venta: YYYYMMDD más consecutivo diario de 4 dígitos.
func FormatNumber(day string, seq int) string {
	return fmt.Sprintf("%s%04d", day, seq)
}

