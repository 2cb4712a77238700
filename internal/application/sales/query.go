package sales

import (
	"context"
	"strings"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

const maxListPage = 200

// Get obtiene una venta del tenant con sus líneas.
func (uc *SalesUseCase) Get(ctx context.Context, actor access.Principal, id string) (*entity.Transaction, error) {
	if err := access.Require(actor.Role, access.PermViewHistory); err != nil {
		return nil, err
	}
	t, err := uc.txRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List historial paginado, más reciente primero. date filtra un día; start/end un rango inclusivo.
func (uc *SalesUseCase) List(ctx context.Context, actor access.Principal, q dto.TransactionQuery) ([]entity.Transaction, int, error) {
	if err := access.Require(actor.Role, access.PermViewHistory); err != nil {
		return nil, 0, err
	}
	f := repository.TransactionFilter{
		Status: strings.TrimSpace(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if f.Status != "" && f.Status != entity.TxStatusCompleted && f.Status != entity.TxStatusVoided {
		return nil, 0, domain.Invalid("Status tidak valid")
	}
	if f.Limit <= 0 || f.Limit > maxListPage {
		f.Limit = dto.DefaultPageLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	start, end := q.StartDate, q.EndDate
	if q.Date != "" {
		start, end = q.Date, q.Date
	}
	if start != "" || end != "" {
		if start == "" {
			start = end
		}
		if end == "" {
			end = start
		}
		p, err := report.NewPeriod(start, end, uc.loc)
		if err != nil {
			return nil, 0, err
		}
		from, until := p.From(), p.Until()
		f.From, f.Until = &from, &until
	}
	return uc.txRepo.List(ctx, actor.TenantID, f)
}

// Receipt venta más los datos del negocio para imprimir el comprobante.
func (uc *SalesUseCase) Receipt(ctx context.Context, actor access.Principal, id string) (*entity.Transaction, *entity.Tenant, error) {
	t, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return t, tenant, nil
}
