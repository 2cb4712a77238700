package terminal

import (
	"context"
	"strings"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/domain/payment"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

// PayRequest pago capturado en el modal de cobro.
type PayRequest struct {
	Method    string
	Amount    money.Amount
	Reference string
}

// AddToCart agrega un ítem al carrito con el precio vigente en el backend.
// No se valida stock aquí: el backend lo verifica al confirmar.
func (s *Service) AddToCart(ctx context.Context, sess *Session, itemID string) (CartView, error) {
	p, err := require(sess, access.PermPOS)
	if err != nil {
		return sess.Cart(), err
	}
	if sess.Cart().Phase == PhasePendingPayment {
		return sess.Cart(), domain.ErrCartLocked
	}
	item, err := s.backend.GetItem(ctx, p, itemID)
	if err != nil {
		return sess.Cart(), s.observe(sess, "get_item", err)
	}
	if item == nil || !item.IsActive {
		return sess.Cart(), domain.Invalid("Barang tidak ditemukan atau tidak aktif")
	}
	return sess.AddItem(item)
}

// RemoveFromCart quita la línea del ítem.
func (s *Service) RemoveFromCart(sess *Session, itemID string) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.RemoveItem(itemID)
}

// SetCartQty fija la cantidad de una línea; ≤ 0 la quita.
func (s *Service) SetCartQty(sess *Session, itemID string, qty int) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.SetQty(itemID, qty)
}

// IncrementCart suma 1 a la línea.
func (s *Service) IncrementCart(sess *Session, itemID string) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.Increment(itemID)
}

// DecrementCart resta 1 a la línea; en 1 la quita.
func (s *Service) DecrementCart(sess *Session, itemID string) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.Decrement(itemID)
}

// ClearCart vacía el carrito.
func (s *Service) ClearCart(sess *Session) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.ClearCart()
}

// BeginCheckout abre el cobro: Draft → PendingPayment.
func (s *Service) BeginCheckout(sess *Session) (CartView, error) {
	if _, err := require(sess, access.PermPOS); err != nil {
		return sess.Cart(), err
	}
	return sess.BeginCheckout()
}

// CancelCheckout cierra el cobro sin efectos: PendingPayment → Draft.
func (s *Service) CancelCheckout(sess *Session) (CartView, error) {
	return sess.CancelCheckout()
}

// Pay valida el pago y confirma la venta en el backend.
// Solo un acuse del backend vacía el carrito; ante cualquier error la sesión sigue en
// PendingPayment con la misma referencia, lista para reintentar.
func (s *Service) Pay(ctx context.Context, sess *Session, in PayRequest) (*entity.Transaction, error) {
	p, err := require(sess, access.PermPOS)
	if err != nil {
		return nil, err
	}

	// 1. Tomar la bandera de pago; un segundo Pay concurrente recibe ErrInFlight
	lines, total, clientRef, err := sess.startPayment()
	if err != nil {
		return nil, err
	}

	// 2. Validación local del pago, sin llamada de red
	tender, err := payment.Capture(total, in.Method, in.Amount, in.Reference)
	if err != nil {
		sess.finishPayment(nil)
		return nil, err
	}

	// 3. Confirmar en el backend
	req := dto.CreateTransactionRequest{
		Items:            make([]dto.TransactionLineRequest, 0, len(lines)),
		PaymentMethod:    tender.Method,
		PaymentAmount:    tender.Amount,
		PaymentReference: tender.Reference,
		ClientRef:        clientRef,
	}
	for _, l := range lines {
		req.Items = append(req.Items, dto.TransactionLineRequest{ItemID: l.ItemID, Qty: l.Qty})
	}
	t, err := s.backend.CreateTransaction(ctx, p, req)
	if err != nil {
		sess.finishPayment(nil)
		return nil, s.observe(sess, "create_transaction", err)
	}

	// 4. Acuse recibido: vaciar carrito y volver a Draft
	sess.finishPayment(t)
	s.publish(sess, EventSaleCompleted, t.ID)

	s.logFor(sess).Info().
		Str("transaction_number", t.Number).
		Int64("total", int64(t.Total)).
		Str("method", t.PaymentMethod).
		Msg("venta confirmada")
	return t, nil
}

// Void anula una venta. El motivo y la capacidad se validan antes de cualquier llamada;
// una anulación en curso del mismo ID recibe ErrInFlight.
func (s *Service) Void(ctx context.Context, sess *Session, id, reason string) (*entity.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	p, err := require(sess, access.PermVoid)
	if err != nil {
		return nil, err
	}
	if !sess.acquire(sess.voiding, id) {
		return nil, domain.ErrInFlight
	}
	defer sess.release(sess.voiding, id)

	t, err := s.backend.VoidTransaction(ctx, p, id, reason)
	if err != nil {
		return nil, s.observe(sess, "void_transaction", err)
	}
	s.publish(sess, EventSaleVoided, t.ID)
	return t, nil
}

// AdjustStock registra un ajuste manual. Un ajuste en curso del mismo ítem recibe ErrInFlight.
func (s *Service) AdjustStock(ctx context.Context, sess *Session, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
	if err := stock.ValidateUserAdjustment(in.AdjustmentType, in.Quantity); err != nil {
		return nil, err
	}
	p, err := require(sess, access.PermManageStock)
	if err != nil {
		return nil, err
	}
	if !sess.acquire(sess.adjusting, itemID) {
		return nil, domain.ErrInFlight
	}
	defer sess.release(sess.adjusting, itemID)

	adj, err := s.backend.AdjustStock(ctx, p, itemID, in)
	if err != nil {
		return nil, s.observe(sess, "adjust_stock", err)
	}
	s.publish(sess, EventStockAdjusted, itemID)
	return adj, nil
}

// SubmitTransaction registra una venta armada fuera de la sesión (otro terminal que usa
// esta instancia como backend). Mismas reglas de deduplicación por ClientRef.
func (s *Service) SubmitTransaction(ctx context.Context, sess *Session, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	p, err := require(sess, access.PermPOS)
	if err != nil {
		return nil, err
	}
	t, err := s.backend.CreateTransaction(ctx, p, in)
	if err != nil {
		return nil, s.observe(sess, "create_transaction", err)
	}
	s.publish(sess, EventSaleCompleted, t.ID)
	return t, nil
}
