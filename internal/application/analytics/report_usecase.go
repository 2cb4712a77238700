// Package analytics contiene los casos de uso de reportes de ventas y el tablero del día.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

const (
	reportTopItems    = 10
	dashboardTopItems = 5 // número de ítems en el widget del tablero
)

// ReportUseCase arma reportes a partir de las transacciones del periodo.
//
// Fuente de datos: TransactionRepository (solo lectura). Toda la agregación es pura
// (paquete report), así que local y remoto producen los mismos números.
type ReportUseCase struct {
	txRepo   repository.TransactionRepository
	itemRepo repository.ItemRepository
	loc      *time.Location
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso. loc es la zona horaria de la tienda.
func NewReportUseCase(txRepo repository.TransactionRepository, itemRepo repository.ItemRepository, loc *time.Location) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{txRepo: txRepo, itemRepo: itemRepo, loc: loc, now: time.Now}
}

// Period interpreta el rango pedido; vacío = hoy, un extremo vacío toma el otro.
func (uc *ReportUseCase) Period(start, end string) (report.Period, error) {
	return report.Resolve(start, end, uc.now(), uc.loc)
}

func (uc *ReportUseCase) load(ctx context.Context, tenantID string, p report.Period) ([]entity.Transaction, error) {
	from, until := p.From(), p.Until()
	txs, _, err := uc.txRepo.List(ctx, tenantID, repository.TransactionFilter{From: &from, Until: &until})
	if err != nil {
		return nil, fmt.Errorf("report: cargar transacciones: %w", err)
	}
	return txs, nil
}

// Summary reporte del periodo: resumen, desglose por método, más vendidos y serie diaria.
func (uc *ReportUseCase) Summary(ctx context.Context, actor access.Principal, start, end string) (*report.Report, error) {
	if err := access.Require(actor.Role, access.PermViewReports); err != nil {
		return nil, err
	}
	p, err := uc.Period(start, end)
	if err != nil {
		return nil, err
	}
	txs, err := uc.load(ctx, actor.TenantID, p)
	if err != nil {
		return nil, err
	}
	r := report.Aggregate(p, txs, reportTopItems)
	return &r, nil
}

// Daily cierre de un día (YYYY-MM-DD; vacío = hoy) con completadas y anuladas.
func (uc *ReportUseCase) Daily(ctx context.Context, actor access.Principal, date string) (*report.DayReport, error) {
	if err := access.Require(actor.Role, access.PermViewReports); err != nil {
		return nil, err
	}
	p, err := uc.Period(date, date)
	if err != nil {
		return nil, err
	}
	txs, err := uc.load(ctx, actor.TenantID, p)
	if err != nil {
		return nil, err
	}
	r := report.DailyClose(p, txs)
	return &r, nil
}

// Export documento de exportación del periodo; el formato (JSON o CSV) lo decide el caller.
func (uc *ReportUseCase) Export(ctx context.Context, actor access.Principal, start, end string) (report.Document, error) {
	if err := access.Require(actor.Role, access.PermViewReports); err != nil {
		return report.Document{}, err
	}
	p, err := uc.Period(start, end)
	if err != nil {
		return report.Document{}, err
	}
	txs, err := uc.load(ctx, actor.TenantID, p)
	if err != nil {
		return report.Document{}, err
	}
	return report.BuildDocument(p, txs), nil
}

// Today construye el tablero del día.
//
// Dos consultas en paralelo:
//  1. transacciones de hoy → resumen + top 5
//  2. ítems con control de stock → contadores de alerta
func (uc *ReportUseCase) Today(ctx context.Context, actor access.Principal) (*report.Dashboard, error) {
	if err := access.Require(actor.Role, access.PermViewDashboard); err != nil {
		return nil, err
	}
	p := report.DayPeriod(uc.now(), uc.loc)

	type txsResult struct {
		txs []entity.Transaction
		err error
	}
	type itemsResult struct {
		items []entity.Item
		err   error
	}
	txsCh := make(chan txsResult, 1)
	itemsCh := make(chan itemsResult, 1)

	go func() {
		txs, err := uc.load(ctx, actor.TenantID, p)
		txsCh <- txsResult{txs, err}
	}()
	go func() {
		items, err := uc.itemRepo.List(ctx, actor.TenantID, repository.ItemFilter{ActiveOnly: true, TrackedOnly: true})
		itemsCh <- itemsResult{items, err}
	}()

	today := <-txsCh
	items := <-itemsCh
	if today.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", today.err)
	}
	if items.err != nil {
		return nil, fmt.Errorf("dashboard: stock: %w", items.err)
	}

	completed := report.Completed(p, today.txs)
	counters := stock.Summarize(items.items)
	return &report.Dashboard{
		Date:            p.Start.Format(report.DateLayout),
		Summary:         report.Summarize(completed),
		TopItems:        report.Top(completed, dashboardTopItems),
		LowStockCount:   counters.LowStock,
		OutOfStockCount: counters.OutOfStock,
	}, nil
}
