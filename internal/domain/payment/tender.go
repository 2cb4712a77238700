// Package payment valida el pago capturado en el terminal.
// QRIS y transferencia no se verifican contra ninguna pasarela: el monto se fuerza
// al total y la referencia solo queda registrada.
package payment

import (
	"strings"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Tender pago validado listo para enviar al backend.
type Tender struct {
	Method    string
	Amount    money.Amount
	Change    money.Amount
	Reference string
}

// ParseMethod valida el método de pago.
func ParseMethod(s string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(s))
	if !entity.IsPaymentMethod(m) {
		return "", domain.ErrInvalidMethod
	}
	return m, nil
}

// Capture valida el pago contra el total.
// tunai: monto ≥ total, cambio = monto − total. qris/transfer: monto = total, cambio 0.
func Capture(total money.Amount, method string, amount money.Amount, reference string) (Tender, error) {
	if total <= 0 {
		return Tender{}, domain.ErrCartEmpty
	}
	if total > money.MaxTotal || amount > money.MaxTotal {
		return Tender{}, domain.ErrOutOfRange
	}
	m, err := ParseMethod(method)
	if err != nil {
		return Tender{}, err
	}
	if m != entity.PaymentCash {
		return Tender{Method: m, Amount: total, Change: 0, Reference: strings.TrimSpace(reference)}, nil
	}
	if amount < total {
		return Tender{}, domain.ErrInsufficientPay
	}
	return Tender{Method: m, Amount: amount, Change: amount - total}, nil
}
