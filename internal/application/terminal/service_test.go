package terminal_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.svc.Login(context.Background(), dto.LoginRequest{Email: ownerEmail, Password: "salah"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}

func TestAuthenticate_TokenYLogout(t *testing.T) {
	h := newHarness(t)

	sess, err := h.svc.Authenticate(h.token)
	require.NoError(t, err)
	assert.Same(t, h.owner, sess)
	assert.Equal(t, access.Owner, sess.Principal().Role)
	assert.Equal(t, "Warung Kopi", sess.Auth().Tenant.Name)

	_, err = h.svc.Authenticate("no-es-un-token")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	h.svc.Logout(sess)
	_, err = h.svc.Authenticate(h.token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

// Cada login es una sesión con su propio carrito.
func TestSesiones_CarritosIndependientes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	assert.Len(t, h.cashier.Cart().Lines, 1)
	assert.Empty(t, h.owner.Cart().Lines)
}

// Una credencial rechazada por el backend cierra la sesión.
func TestBackendAuthError_CierraSesion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	h.backend.voidHook = func(context.Context, access.Principal, string, string) (*entity.Transaction, error) {
		return nil, domain.ErrUnauthorized
	}
	_, err := h.svc.Void(ctx, h.owner, kopi.ID, "salah input")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.svc.Authenticate(h.token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegistry_SweepExpiradas(t *testing.T) {
	h := newHarness(t)
	reg := terminal.NewRegistry()
	svc := terminal.NewService(h.backend, reg, terminal.TokenConfig{Secret: testTokens.Secret, Issuer: "x", ExpMinutes: 0}, nil, nil, logger.Nop())

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: cashierEmail, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	assert.Equal(t, 1, reg.Sweep(time.Now().Add(time.Minute)))
	assert.Zero(t, reg.Len())
}

// ──────────────────────────────────────────────────────────────────────────────
// Capacidades
// ──────────────────────────────────────────────────────────────────────────────

func TestCapacidades_Kasir(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.kopi(t)

	_, err := h.svc.ListItems(ctx, h.cashier, dto.ItemQuery{})
	require.NoError(t, err)
	_, _, err = h.svc.ListTransactions(ctx, h.cashier, dto.TransactionQuery{})
	require.NoError(t, err)
	_, err = h.svc.Dashboard(ctx, h.cashier)
	require.NoError(t, err)

	_, err = h.svc.CreateItem(ctx, h.cashier, dto.CreateItemRequest{Name: "Es Teh", Price: 3000})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.ReportSummary(ctx, h.cashier, "", "")
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.StockAlerts(ctx, h.cashier)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.Export(ctx, h.cashier, "", "", report.FormatCSV)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock: alertas e historial
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAlerts_Clasificacion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	low := h.item(t, "Gula", 14000, true, 3, 5)
	out := h.item(t, "Susu", 18000, true, 0, 5)
	h.item(t, "Kopi Bubuk", 25000, true, 6, 5)
	h.item(t, "Pisang Goreng", 2000, false, 0, 5)

	alerts, err := h.svc.StockAlerts(ctx, h.owner)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byID := map[string]stock.Alert{}
	for _, a := range alerts {
		byID[a.Item.ID] = a
	}
	assert.Equal(t, entity.StockLow, byID[low.ID].Status)
	assert.Equal(t, stock.SeverityWarning, byID[low.ID].Severity)
	assert.Equal(t, entity.StockOut, byID[out.ID].Status)
	assert.Equal(t, stock.SeverityCritical, byID[out.ID].Severity)

	summary, items, err := h.svc.StockSummary(ctx, h.owner, true)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTracked)
	assert.Equal(t, 1, summary.LowStock)
	assert.Equal(t, 1, summary.OutOfStock)
	assert.Len(t, items, 2)
}

// El historial sale del más reciente al más antiguo, acotado por limit y repaginado en cada recorrido.
func TestStockHistory_Secuencia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	for i := 1; i <= 24; i++ {
		_, err := h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: i})
		require.NoError(t, err)
	}

	seq := h.svc.StockHistory(ctx, h.owner, kopi.ID, 22)
	got, err := terminal.CollectHistory(seq)
	require.NoError(t, err)
	require.Len(t, got, 22)
	assert.Equal(t, 24, got[0].Quantity, "más reciente primero")
	assert.Equal(t, 3, got[21].Quantity)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i].StockAfter, got[i-1].StockBefore)
	}
	assert.Equal(t, 2, h.backend.Calls("stock_history"))

	// Un segundo recorrido vuelve a consultar; cortar antes no pide más páginas.
	n := 0
	for a, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, entity.AdjustAdd, a.Type)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, h.backend.Calls("stock_history"))

	// Límite mayor que el ledger: termina al agotar las entradas (24 ajustes más el stock inicial).
	all, err := terminal.CollectHistory(h.svc.StockHistory(ctx, h.owner, kopi.ID, 100))
	require.NoError(t, err)
	require.Len(t, all, 25)
	assert.Equal(t, entity.AdjustSet, all[24].Type)
}

func TestStockHistory_SinCapacidad(t *testing.T) {
	h := newHarness(t)
	kopi := h.kopi(t)
	_, err := terminal.CollectHistory(h.svc.StockHistory(context.Background(), h.cashier, kopi.ID, 10))
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, h.backend.Calls("stock_history"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

// El total del periodo es la suma de las ventas completadas; las anuladas no cuentan.
func TestReportes_ConsistenciaYExport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	t1 := pagarKopi(t, h, kopi, 2)
	t2 := pagarKopi(t, h, kopi, 1)
	t3 := pagarKopi(t, h, kopi, 3)
	_, err := h.svc.Void(ctx, h.owner, t2.ID, "salah input")
	require.NoError(t, err)

	r, err := h.svc.ReportSummary(ctx, h.owner, "", "")
	require.NoError(t, err)
	assert.Equal(t, t1.Total+t3.Total, r.Summary.TotalSales)
	assert.Equal(t, 2, r.Summary.TotalTransactions)
	assert.Equal(t, 5, r.Summary.TotalItemsSold)
	assert.Equal(t, (t1.Total+t3.Total)/2, r.Summary.AvgTransaction)

	daily, err := h.svc.DailyReport(ctx, h.owner, "")
	require.NoError(t, err)
	assert.Equal(t, 1, daily.TotalVoided)
	assert.Equal(t, t2.Total, daily.VoidedAmount)

	jsonFile, err := h.svc.Export(ctx, h.owner, "", "", report.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", jsonFile.ContentType)
	assert.True(t, strings.HasSuffix(jsonFile.Filename, ".json"))
	var doc dto.ExportResponse
	require.NoError(t, json.Unmarshal(jsonFile.Body, &doc))
	assert.Equal(t, r.Summary.TotalSales, doc.Summary.TotalSales)
	assert.Len(t, doc.Data, 3)

	csvFile, err := h.svc.Export(ctx, h.owner, "", "", report.FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(csvFile.Filename, ".csv"))
	assert.Contains(t, string(csvFile.Body), t1.Number)

	_, err = h.svc.Export(ctx, h.owner, "", "", "xlsx")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestDashboard_Hoy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	pagarKopi(t, h, kopi, 6)

	d, err := h.svc.Dashboard(ctx, h.cashier)
	require.NoError(t, err)
	assert.EqualValues(t, 90000, d.Summary.TotalSales)
	assert.Equal(t, 1, d.LowStockCount)
	require.Len(t, d.TopItems, 1)
	assert.Equal(t, "Kopi", d.TopItems[0].Name)
}
