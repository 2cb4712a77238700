package terminal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Venta completa
// ──────────────────────────────────────────────────────────────────────────────

// Kopi ×2 en tunai con 50.000: cambio 20.000, stock 8; anular con motivo devuelve el stock a 10.
func TestCheckout_EscenarioKopi(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	view, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 30000, view.Total)
	assert.Equal(t, 1, view.LineCount)
	assert.Equal(t, 2, view.ItemCount)

	view, err = h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)
	assert.Equal(t, terminal.PhasePendingPayment, view.Phase)
	assert.NotEmpty(t, view.ClientRef)

	tx, err := h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 50000})
	require.NoError(t, err)
	assert.EqualValues(t, 30000, tx.Total)
	assert.EqualValues(t, 50000, tx.PaymentAmount)
	assert.EqualValues(t, 20000, tx.Change)
	assert.Equal(t, entity.TxStatusCompleted, tx.Status)
	assert.Equal(t, 8, h.stockOf(t, kopi.ID))

	after := h.cashier.Cart()
	assert.Empty(t, after.Lines, "el carrito se vacía solo con el acuse")
	assert.Equal(t, terminal.PhaseDraft, after.Phase)
	assert.Empty(t, after.ClientRef)
	require.NotNil(t, h.cashier.LastReceipt())
	assert.Equal(t, tx.Number, h.cashier.LastReceipt().Number)

	voided, err := h.svc.Void(ctx, h.owner, tx.ID, "salah input")
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusVoided, voided.Status)
	assert.Equal(t, "salah input", voided.VoidReason)
	assert.Equal(t, 10, h.stockOf(t, kopi.ID))

	assert.Equal(t, []string{terminal.EventItemChanged, terminal.EventSaleCompleted, terminal.EventSaleVoided}, h.events.Types())
}

// Total = Σ qty × precio tras una secuencia arbitraria de operaciones.
func TestCheckout_TotalIgualSumaDeLineas(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	roti := h.item(t, "Roti", 8500, false, 0, 0)

	for _, id := range []string{kopi.ID, roti.ID, kopi.ID, roti.ID} {
		_, err := h.svc.AddToCart(ctx, h.cashier, id)
		require.NoError(t, err)
	}
	_, err := h.svc.SetCartQty(h.cashier, roti.ID, 5)
	require.NoError(t, err)
	_, err = h.svc.DecrementCart(h.cashier, kopi.ID)
	require.NoError(t, err)
	_, err = h.svc.IncrementCart(h.cashier, roti.ID)
	require.NoError(t, err)

	_, err = h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)
	tx, err := h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentTransfer, Reference: "BCA-001"})
	require.NoError(t, err)

	var sum int64
	for _, l := range tx.Lines {
		assert.EqualValues(t, int64(l.Price)*int64(l.Qty), l.Subtotal)
		sum += int64(l.Subtotal)
	}
	assert.EqualValues(t, sum, tx.Total)
	assert.EqualValues(t, 15000+6*8500, tx.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pago
// ──────────────────────────────────────────────────────────────────────────────

// Tunai por debajo del total se rechaza sin llamar al backend y la sesión sigue en cobro.
func TestPay_TunaiInsuficiente(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	before, err := h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)

	_, err = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 14999})
	require.ErrorIs(t, err, domain.ErrInsufficientPay)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, h.backend.Calls("create_transaction"))

	view := h.cashier.Cart()
	assert.Equal(t, terminal.PhasePendingPayment, view.Phase)
	assert.Equal(t, before.ClientRef, view.ClientRef)
	assert.False(t, view.Paying)
	assert.Equal(t, 10, h.stockOf(t, kopi.ID))
}

// qris y transfer: monto = total y cambio 0, aunque el cliente mande otro monto.
func TestPay_NoTunaiExacto(t *testing.T) {
	for _, method := range []string{entity.PaymentQRIS, entity.PaymentTransfer} {
		t.Run(method, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			kopi := h.kopi(t)

			_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
			require.NoError(t, err)
			_, err = h.svc.BeginCheckout(h.cashier)
			require.NoError(t, err)

			tx, err := h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: method, Amount: 99999, Reference: " ref-77 "})
			require.NoError(t, err)
			assert.Equal(t, tx.Total, tx.PaymentAmount)
			assert.Zero(t, tx.Change)
			assert.Equal(t, "ref-77", tx.PaymentReference)
		})
	}
}

func TestPay_SinAbrirCobro(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)

	_, err = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 20000})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, h.backend.Calls("create_transaction"))
}

// Stock insuficiente: conflicto del backend, carrito intacto y sin transacción.
func TestPay_StockInsuficienteConservaCarrito(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teh := h.item(t, "Teh Botol", 5000, true, 1, 2)

	_, err := h.svc.AddToCart(ctx, h.cashier, teh.ID)
	require.NoError(t, err)
	_, err = h.svc.SetCartQty(h.cashier, teh.ID, 3)
	require.NoError(t, err)
	_, err = h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)

	_, err = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 15000})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	view := h.cashier.Cart()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Qty)
	assert.Equal(t, terminal.PhasePendingPayment, view.Phase)
	assert.Equal(t, 1, h.stockOf(t, teh.ID))

	txs, total, err := h.svc.ListTransactions(ctx, h.owner, dto.TransactionQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, txs)
}

// El backend confirma pero el acuse se pierde: el reintento con la misma referencia
// devuelve la misma venta y el stock se descuenta una sola vez.
func TestPay_ReintentoTrasTimeoutNoDuplica(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	lost := true
	h.backend.createHook = func(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
		tx, err := h.local.CreateTransaction(ctx, p, in)
		if lost {
			lost = false
			return nil, domain.Transient(errors.New("read tcp: i/o timeout"))
		}
		return tx, err
	}

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	begin, err := h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)

	_, err = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 20000})
	require.Error(t, err)
	assert.True(t, domain.Retryable(err))
	view := h.cashier.Cart()
	assert.Equal(t, terminal.PhasePendingPayment, view.Phase, "un fallo transitorio no se trata como éxito")
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, begin.ClientRef, view.ClientRef)

	tx, err := h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, begin.ClientRef, tx.ClientRef)
	assert.Equal(t, 9, h.stockOf(t, kopi.ID))

	_, total, err := h.svc.ListTransactions(ctx, h.owner, dto.TransactionQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// Mientras un pago está en curso, un segundo Pay recibe ErrInFlight sin llegar al backend.
func TestPay_DobleEnvioBloqueado(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	h.backend.createHook = func(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
		close(entered)
		<-proceed
		return h.local.CreateTransaction(ctx, p, in)
	}

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	_, err = h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var first error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, first = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 15000})
	}()
	<-entered

	_, err = h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentCash, Amount: 15000})
	require.ErrorIs(t, err, domain.ErrInFlight)
	assert.True(t, h.cashier.Cart().Paying)
	_, err = h.svc.CancelCheckout(h.cashier)
	require.ErrorIs(t, err, domain.ErrInFlight)

	close(proceed)
	wg.Wait()
	require.NoError(t, first)
	assert.Equal(t, 1, h.backend.Calls("create_transaction"))
	assert.Equal(t, 9, h.stockOf(t, kopi.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados del carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CarritoVacioNoAbreCobro(t *testing.T) {
	h := newHarness(t)
	view, err := h.svc.BeginCheckout(h.cashier)
	require.ErrorIs(t, err, domain.ErrCartEmpty)
	assert.Equal(t, terminal.PhaseDraft, view.Phase)
}

// Con el cobro abierto el carrito no cambia; cancelar vuelve a Draft con el carrito intacto.
func TestCheckout_CarritoBloqueadoYCancelacion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	begin, err := h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)

	_, err = h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.ErrorIs(t, err, domain.ErrCartLocked)
	_, err = h.svc.ClearCart(h.cashier)
	require.ErrorIs(t, err, domain.ErrCartLocked)

	view, err := h.svc.CancelCheckout(h.cashier)
	require.NoError(t, err)
	assert.Equal(t, terminal.PhaseDraft, view.Phase)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].Qty)
	assert.Equal(t, begin.ClientRef, view.ClientRef, "sin cambios en el carrito se conserva la referencia")

	view, err = h.svc.IncrementCart(h.cashier, kopi.ID)
	require.NoError(t, err)
	assert.Empty(t, view.ClientRef, "un carrito distinto es otra venta")
}

// Una edición que no cambia las líneas conserva la referencia: el reintento sigue deduplicando.
func TestCheckout_EdicionSinCambiosConservaReferencia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	begin, err := h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)
	_, err = h.svc.CancelCheckout(h.cashier)
	require.NoError(t, err)

	view, err := h.svc.SetCartQty(h.cashier, kopi.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, begin.ClientRef, view.ClientRef, "misma cantidad")
	view, err = h.svc.RemoveFromCart(h.cashier, "no-existe")
	require.NoError(t, err)
	assert.Equal(t, begin.ClientRef, view.ClientRef, "línea inexistente")
	view, err = h.svc.SetCartQty(h.cashier, kopi.ID, money.MaxQty+1)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, begin.ClientRef, view.ClientRef, "cambio rechazado")
	assert.Equal(t, 1, view.Lines[0].Qty)

	again, err := h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)
	assert.Equal(t, begin.ClientRef, again.ClientRef)
}

func TestAddToCart_ItemInactivo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	inactive := false
	_, err := h.svc.UpdateItem(ctx, h.owner, kopi.ID, dto.UpdateItemRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, h.cashier.Cart().Lines)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func pagarKopi(t *testing.T, h *harness, kopi *entity.Item, qty int) *entity.Transaction {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.AddToCart(ctx, h.cashier, kopi.ID)
	require.NoError(t, err)
	_, err = h.svc.SetCartQty(h.cashier, kopi.ID, qty)
	require.NoError(t, err)
	_, err = h.svc.BeginCheckout(h.cashier)
	require.NoError(t, err)
	tx, err := h.svc.Pay(ctx, h.cashier, terminal.PayRequest{Method: entity.PaymentQRIS})
	require.NoError(t, err)
	return tx
}

// Anular dos veces: la segunda es rechazada y no hay un segundo void_return.
func TestVoid_SoloUnaVez(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	tx := pagarKopi(t, h, kopi, 3)
	assert.Equal(t, 7, h.stockOf(t, kopi.ID))

	_, err := h.svc.Void(ctx, h.owner, tx.ID, "pelanggan batal")
	require.NoError(t, err)
	_, err = h.svc.Void(ctx, h.owner, tx.ID, "pelanggan batal")
	require.ErrorIs(t, err, domain.ErrAlreadyVoided)
	assert.Equal(t, 10, h.stockOf(t, kopi.ID))

	returns, err := h.store.Adjustments().ListByTransaction(ctx, h.owner.Principal().TenantID, tx.ID, entity.AdjustVoidReturn)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, 3, returns[0].Quantity)

	got, err := h.svc.GetTransaction(ctx, h.owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.Lines, got.Lines, "la anulación no reescribe los snapshots")
}

// Sin motivo o sin capacidad no se llama al backend.
func TestVoid_ValidacionLocal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	tx := pagarKopi(t, h, kopi, 1)

	_, err := h.svc.Void(ctx, h.owner, tx.ID, "   ")
	require.ErrorIs(t, err, domain.ErrReasonRequired)

	_, err = h.svc.Void(ctx, h.cashier, tx.ID, "salah input")
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	assert.Zero(t, h.backend.Calls("void_transaction"))
	assert.Equal(t, 9, h.stockOf(t, kopi.ID))
}

// Un fallo de red en la anulación deja la venta como estaba.
func TestVoid_FalloTransitorioNoCambiaEstado(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)
	tx := pagarKopi(t, h, kopi, 2)

	h.backend.voidHook = func(context.Context, access.Principal, string, string) (*entity.Transaction, error) {
		return nil, domain.Transient(errors.New("connection refused"))
	}
	_, err := h.svc.Void(ctx, h.owner, tx.ID, "salah input")
	require.Error(t, err)
	assert.True(t, domain.Retryable(err))

	got, err := h.svc.GetTransaction(ctx, h.owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusCompleted, got.Status)
	assert.Equal(t, 8, h.stockOf(t, kopi.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_ValidacionYRecorte(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	_, err := h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustSubtract, Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustSale, Quantity: 1})
	require.Error(t, err, "sale solo lo genera una venta")

	_, err = h.svc.AdjustStock(ctx, h.cashier, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, h.backend.Calls("adjust_stock"))

	adj, err := h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustSubtract, Quantity: 25, Reason: "rusak"})
	require.NoError(t, err)
	assert.Equal(t, 10, adj.StockBefore)
	assert.Equal(t, 0, adj.StockAfter)
	assert.Equal(t, 25, adj.Quantity)
	assert.Equal(t, 0, h.stockOf(t, kopi.ID))
}

func TestAdjustStock_DobleEnvioBloqueado(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kopi := h.kopi(t)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	h.backend.adjustHook = func(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
		close(entered)
		<-proceed
		return h.local.AdjustStock(ctx, p, itemID, in)
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 5})
		done <- err
	}()
	<-entered

	_, err := h.svc.AdjustStock(ctx, h.owner, kopi.ID, dto.AdjustStockRequest{AdjustmentType: entity.AdjustAdd, Quantity: 5})
	require.ErrorIs(t, err, domain.ErrInFlight)

	close(proceed)
	require.NoError(t, <-done)
	assert.Equal(t, 15, h.stockOf(t, kopi.ID))
	assert.Equal(t, 1, h.backend.Calls("adjust_stock"))
}
