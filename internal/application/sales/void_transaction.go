package sales

import (
	"context"
	"strings"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

// Void anula una venta completada: devuelve al stock cada salida registrada y marca la venta.
// Una venta anulada no vuelve a anularse.
func (uc *SalesUseCase) Void(ctx context.Context, actor access.Principal, id, reason string) (*entity.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	if err := access.Require(actor.Role, access.PermVoid); err != nil {
		return nil, err
	}

	now := uc.now()
	var out *entity.Transaction
	restored := 0
	err := uc.txRunner.RunSales(ctx, func(
		itemRepo repository.ItemRepository,
		ledgerRepo repository.StockAdjustmentRepository,
		txRepo repository.TransactionRepository,
	) error {
		t, err := txRepo.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.IsVoided() {
			return domain.ErrAlreadyVoided
		}

		returns, err := uc.inventoryUC.ReturnSaleInTx(ctx, itemRepo, ledgerRepo, actor.TenantID, t.ID, reason, actor, now)
		if err != nil {
			return err
		}
		restored = len(returns)

		at := now
		t.Status = entity.TxStatusVoided
		t.VoidReason = reason
		t.VoidedBy = actor.UserID
		t.VoidedByName = actor.Name
		t.VoidedAt = &at
		if err := txRepo.MarkVoided(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("transaction_id", out.ID).
		Str("number", out.Number).
		Int("stock_returns", restored).
		Msg("venta anulada")
	return out, nil
}
