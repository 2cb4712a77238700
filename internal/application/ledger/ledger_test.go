package ledger_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/memory"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	b       *ledger.Backend
	owner   access.Principal
	cashier access.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	b := ledger.New(memory.New().Repositories(), ledger.Options{Location: time.UTC, DefaultThreshold: 10}, logger.Nop())

	tenant, owner, err := b.Auth.Bootstrap(ctx, entity.Tenant{Name: "Warung Kopi"}, "Bu Sari", "pemilik@warungkopi.id", "rahasia123")
	require.NoError(t, err)
	ownerP := access.Principal{UserID: owner.ID, Name: owner.Name, TenantID: tenant.ID, Role: access.Owner}
	kasir, err := b.Auth.RegisterUser(ctx, ownerP, "Andi", "kasir@warungkopi.id", "rahasia123", access.Cashier)
	require.NoError(t, err)

	return &fixture{
		b:       b,
		owner:   ownerP,
		cashier: access.Principal{UserID: kasir.ID, Name: kasir.Name, TenantID: tenant.ID, Role: access.Cashier},
	}
}

func (f *fixture) item(t *testing.T, name string, price money.Amount, track bool, stock int) *entity.Item {
	t.Helper()
	it, err := f.b.CreateItem(context.Background(), f.owner, dto.CreateItemRequest{
		Name: name, Price: price, TrackStock: track, Stock: stock,
	})
	require.NoError(t, err)
	return it
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	it, err := f.b.GetItem(context.Background(), f.owner, id)
	require.NoError(t, err)
	return it.Stock
}

func (f *fixture) history(t *testing.T, id string) []entity.StockAdjustment {
	t.Helper()
	h, err := f.b.StockHistory(context.Background(), f.owner, id, 50, 0)
	require.NoError(t, err)
	return h
}

func cashSale(amount money.Amount, lines ...dto.TransactionLineRequest) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{Items: lines, PaymentMethod: entity.PaymentCash, PaymentAmount: amount}
}

func line(id string, qty int) dto.TransactionLineRequest {
	return dto.TransactionLineRequest{ItemID: id, Qty: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_DescuentaStockYNumera(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	tx1, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(50000, line(kopi.ID, 2)))
	require.NoError(t, err)
	assert.Equal(t, money.Amount(30000), tx1.Total)
	assert.Equal(t, money.Amount(20000), tx1.Change)
	assert.Equal(t, entity.TxStatusCompleted, tx1.Status)
	assert.Equal(t, "Andi", tx1.CashierName)
	assert.Len(t, tx1.Number, 12)
	assert.Equal(t, "0001", tx1.Number[8:])

	tx2, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(15000, line(kopi.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "0002", tx2.Number[8:])

	assert.Equal(t, 7, f.stockOf(t, kopi.ID))

	h := f.history(t, kopi.ID)
	require.Len(t, h, 3)
	assert.Equal(t, entity.AdjustSale, h[0].Type)
	assert.Equal(t, tx2.ID, h[0].TransactionID)
	assert.Equal(t, entity.AdjustSet, h[2].Type)
}

func TestVenta_LineasRepetidasSeFusionan(t *testing.T) {
	f := newFixture(t)
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	tx, err := f.b.CreateTransaction(context.Background(), f.cashier, cashSale(45000, line(kopi.ID, 1), line(kopi.ID, 2)))
	require.NoError(t, err)
	require.Len(t, tx.Lines, 1)
	assert.Equal(t, 3, tx.Lines[0].Qty)
	assert.Equal(t, money.Amount(45000), tx.Lines[0].Subtotal)
}

func TestVenta_StockInsuficienteNoTocaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 5)
	teh := f.item(t, "Teh Manis", 5000, true, 1)

	_, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(100000, line(kopi.ID, 2), line(teh.ID, 3)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	assert.Equal(t, 5, f.stockOf(t, kopi.ID))
	assert.Equal(t, 1, f.stockOf(t, teh.ID))
	assert.Len(t, f.history(t, kopi.ID), 1, "solo la entrada inicial")

	_, total, err := f.b.ListTransactions(ctx, f.owner, dto.TransactionQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestVenta_ClientRefRepetidoDevuelveLaMisma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	req := cashSale(15000, line(kopi.ID, 1))
	req.ClientRef = "checkout-7f3a"
	first, err := f.b.CreateTransaction(ctx, f.cashier, req)
	require.NoError(t, err)
	again, err := f.b.CreateTransaction(ctx, f.cashier, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Number, again.Number)
	assert.Equal(t, 9, f.stockOf(t, kopi.ID))
}

func TestVenta_ItemSinControlNoGeneraLedger(t *testing.T) {
	f := newFixture(t)
	bungkus := f.item(t, "Bungkus", 1000, false, 0)

	_, err := f.b.CreateTransaction(context.Background(), f.cashier, cashSale(5000, line(bungkus.ID, 5)))
	require.NoError(t, err)
	assert.Empty(t, f.history(t, bungkus.ID))
}

func TestVenta_NoEfectivoFuerzaMontoExacto(t *testing.T) {
	f := newFixture(t)
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	tx, err := f.b.CreateTransaction(context.Background(), f.cashier, dto.CreateTransactionRequest{
		Items:            []dto.TransactionLineRequest{line(kopi.ID, 1)},
		PaymentMethod:    entity.PaymentQRIS,
		PaymentAmount:    99999,
		PaymentReference: "  QR-001  ",
	})
	require.NoError(t, err)
	assert.Equal(t, tx.Total, tx.PaymentAmount)
	assert.Zero(t, tx.Change)
	assert.Equal(t, "QR-001", tx.PaymentReference)
}

func TestVenta_ItemInactivoORechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)
	require.NoError(t, f.b.DeleteItem(ctx, f.owner, kopi.ID))

	_, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(15000, line(kopi.ID, 1)))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.b.CreateTransaction(ctx, f.cashier, cashSale(0))
	assert.True(t, errors.Is(err, domain.ErrCartEmpty))

	_, err = f.b.CreateTransaction(ctx, f.cashier, dto.CreateTransactionRequest{
		Items:         []dto.TransactionLineRequest{line("x", 1)},
		PaymentMethod: "kartu",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidMethod))
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestAnular_DevuelveStockUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)
	tx, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(30000, line(kopi.ID, 2)))
	require.NoError(t, err)

	_, err = f.b.VoidTransaction(ctx, f.cashier, tx.ID, "salah input")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.b.VoidTransaction(ctx, f.owner, tx.ID, "   ")
	assert.True(t, errors.Is(err, domain.ErrReasonRequired))

	voided, err := f.b.VoidTransaction(ctx, f.owner, tx.ID, "salah input")
	require.NoError(t, err)
	assert.True(t, voided.IsVoided())
	assert.Equal(t, "salah input", voided.VoidReason)
	assert.Equal(t, "Bu Sari", voided.VoidedByName)
	require.NotNil(t, voided.VoidedAt)
	assert.Equal(t, 10, f.stockOf(t, kopi.ID))

	h := f.history(t, kopi.ID)
	assert.Equal(t, entity.AdjustVoidReturn, h[0].Type)
	assert.Equal(t, tx.ID, h[0].TransactionID)
	assert.Equal(t, 2, h[0].Quantity)

	_, err = f.b.VoidTransaction(ctx, f.owner, tx.ID, "lagi")
	assert.True(t, errors.Is(err, domain.ErrAlreadyVoided))
	assert.Equal(t, 10, f.stockOf(t, kopi.ID))
}

func TestAnular_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.b.VoidTransaction(context.Background(), f.owner, "no-existe", "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAjuste_RestarSeRecortaEnCero(t *testing.T) {
	f := newFixture(t)
	kopi := f.item(t, "Kopi Susu", 15000, true, 3)

	adj, err := f.b.AdjustStock(context.Background(), f.owner, kopi.ID, dto.AdjustStockRequest{
		AdjustmentType: entity.AdjustSubtract, Quantity: 5, Reason: "rusak",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, adj.Quantity)
	assert.Equal(t, 3, adj.StockBefore)
	assert.Equal(t, 0, adj.StockAfter)
	assert.Equal(t, -3, adj.Delta())
	assert.Equal(t, 0, f.stockOf(t, kopi.ID))
}

func TestAjuste_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 3)
	bungkus := f.item(t, "Bungkus", 1000, false, 0)

	cases := []struct {
		name  string
		actor access.Principal
		item  string
		req   dto.AdjustStockRequest
		kind  domain.Kind
	}{
		{"kasir", f.cashier, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 1}, domain.KindForbidden},
		{"tipo de sistema", f.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustSale, Quantity: 1}, domain.KindValidation},
		{"cantidad cero", f.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 0}, domain.KindValidation},
		{"sin control", f.owner, bungkus.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 1}, domain.KindValidation},
		{"inexistente", f.owner, "no-existe", dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 1}, domain.KindNotFound},
		{"cantidad enorme", f.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: math.MaxInt}, domain.KindValidation},
		{"sobre el máximo", f.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustSet, Quantity: stock.MaxQuantity + 1}, domain.KindValidation},
	}
	for _, tc := range cases {
		_, err := f.b.AdjustStock(ctx, tc.actor, tc.item, tc.req)
		assert.Equal(t, tc.kind, domain.KindOf(err), tc.name)
	}
	assert.Equal(t, 3, f.stockOf(t, kopi.ID))
}

func TestAjuste_CantidadMaxima(t *testing.T) {
	f := newFixture(t)
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	adj, err := f.b.AdjustStock(context.Background(), f.owner, kopi.ID, dto.AdjustStockRequest{
		AdjustmentType: entity.AdjustAdd, Quantity: stock.MaxQuantity,
	})
	require.NoError(t, err)
	assert.Equal(t, 10+stock.MaxQuantity, adj.StockAfter)
	assert.Equal(t, 10+stock.MaxQuantity, f.stockOf(t, kopi.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Límites de monto y cantidad en ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_TotalEnElLimite(t *testing.T) {
	f := newFixture(t)
	emas := f.item(t, "Emas", money.MaxPrice, false, 0)

	tx, err := f.b.CreateTransaction(context.Background(), f.cashier, cashSale(money.MaxTotal, line(emas.ID, 1000)))
	require.NoError(t, err)
	assert.Equal(t, money.MaxTotal, tx.Total)
	assert.Equal(t, money.MaxTotal, tx.Lines[0].Subtotal)
	assert.Equal(t, money.Amount(0), tx.Change)
}

func TestVenta_FueraDeLimiteSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emas := f.item(t, "Emas", money.MaxPrice, false, 0)
	kopi := f.item(t, "Kopi Susu", 15000, true, 10)

	cases := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"total sobre el máximo", cashSale(100, line(emas.ID, 1001))},
		{"dos líneas que suman de más", cashSale(100, line(emas.ID, 1000), line(kopi.ID, 1))},
		{"qty sobre el máximo", cashSale(100, line(kopi.ID, money.MaxQty+1))},
		{"líneas fusionadas de más", cashSale(100, line(kopi.ID, money.MaxQty), line(kopi.ID, 1))},
		{"qty que desborda", cashSale(100, line(kopi.ID, math.MaxInt))},
		{"pago sobre el máximo", cashSale(money.MaxTotal+1, line(kopi.ID, 1))},
	}
	for _, tc := range cases {
		_, err := f.b.CreateTransaction(ctx, f.cashier, tc.req)
		assert.ErrorIs(t, err, domain.ErrOutOfRange, tc.name)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), tc.name)
	}

	_, total, err := f.b.ListTransactions(ctx, f.owner, dto.TransactionQuery{})
	require.NoError(t, err)
	assert.Zero(t, total, "nada se registra")
	assert.Equal(t, 10, f.stockOf(t, kopi.ID))
}

func TestItem_PrecioFueraDeLimite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.b.CreateItem(ctx, f.owner, dto.CreateItemRequest{Name: "Emas", Price: money.Amount(1<<62 + 1)})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = f.b.CreateItem(ctx, f.owner, dto.CreateItemRequest{Name: "Kopi", Price: 1, TrackStock: true, Stock: stock.MaxQuantity + 1})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	kopi := f.item(t, "Kopi Susu", 15000, true, 10)
	caro := money.MaxPrice + 1
	_, err = f.b.UpdateItem(ctx, f.owner, kopi.ID, dto.UpdateItemRequest{Price: &caro})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestAlertasYResumen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "Kopi Susu", 15000, true, 50)
	f.item(t, "Teh Manis", 5000, true, 4)
	f.item(t, "Roti", 8000, true, 0)

	alerts, err := f.b.StockAlerts(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Roti", alerts[0].Item.Name, "habis primero")
	assert.Equal(t, "critical", alerts[0].Severity)
	assert.Equal(t, "warning", alerts[1].Severity)

	sum, items, err := f.b.StockSummary(ctx, f.owner, true)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalTracked)
	assert.Equal(t, 1, sum.LowStock)
	assert.Equal(t, 1, sum.OutOfStock)
	assert.Len(t, items, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReporte_ExcluyeAnuladas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.item(t, "Kopi Susu", 15000, true, 20)
	teh := f.item(t, "Teh Manis", 5000, true, 20)

	_, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(50000, line(kopi.ID, 2), line(teh.ID, 1)))
	require.NoError(t, err)
	_, err = f.b.CreateTransaction(ctx, f.cashier, dto.CreateTransactionRequest{
		Items: []dto.TransactionLineRequest{line(teh.ID, 2)}, PaymentMethod: entity.PaymentQRIS,
	})
	require.NoError(t, err)
	voided, err := f.b.CreateTransaction(ctx, f.cashier, cashSale(15000, line(kopi.ID, 1)))
	require.NoError(t, err)
	_, err = f.b.VoidTransaction(ctx, f.owner, voided.ID, "batal")
	require.NoError(t, err)

	rep, err := f.b.ReportSummary(ctx, f.owner, "", "")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(45000), rep.Summary.TotalSales)
	assert.Equal(t, 2, rep.Summary.TotalTransactions)
	assert.Equal(t, 5, rep.Summary.TotalItemsSold)
	assert.Equal(t, money.Amount(22500), rep.Summary.AvgTransaction)

	require.Len(t, rep.PaymentBreakdown, 3)
	assert.Equal(t, entity.PaymentCash, rep.PaymentBreakdown[0].Method)
	assert.Equal(t, money.Amount(35000), rep.PaymentBreakdown[0].Amount)
	assert.Equal(t, 0, rep.PaymentBreakdown[2].Count)

	require.NotEmpty(t, rep.TopItems)
	assert.Equal(t, "Teh Manis", rep.TopItems[0].Name)
	assert.Equal(t, 3, rep.TopItems[0].Qty)

	day, err := f.b.DailyReport(ctx, f.owner, "")
	require.NoError(t, err)
	assert.Equal(t, 2, day.TotalTransactions)
	assert.Equal(t, 1, day.TotalVoided)
	assert.Equal(t, money.Amount(15000), day.VoidedAmount)
	assert.Len(t, day.Transactions, 3)

	_, err = f.b.ReportSummary(ctx, f.cashier, "", "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestBootstrap_EmailRepetido(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.b.Auth.Bootstrap(context.Background(), entity.Tenant{Name: "Toko Lain"}, "X", "pemilik@warungkopi.id", "rahasia123")
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}
