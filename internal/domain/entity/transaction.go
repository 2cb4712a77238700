package entity

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Estados de una transacción registrada.
const (
	TxStatusCompleted = "selesai"
	TxStatusVoided    = "void"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "tunai"
	PaymentQRIS     = "qris"
	PaymentTransfer = "transfer"
)

// Transaction es la venta registrada. Las líneas son snapshots de nombre y precio
// tomados al confirmar; no cambian aunque el ítem cambie después.
type Transaction struct {
	ID               string
	TenantID         string
	Number           string // YYYYMMDD + secuencia diaria de 4 dígitos
	ClientRef        string // referencia estable del checkout, para deduplicar reintentos
	Lines            []TransactionLine
	Total            money.Amount
	PaymentMethod    string
	PaymentAmount    money.Amount
	Change           money.Amount
	PaymentReference string
	Status           string
	CashierID        string
	CashierName      string
	VoidReason       string
	VoidedBy         string
	VoidedByName     string
	VoidedAt         *time.Time
	CreatedAt        time.Time
}

// TransactionLine línea de detalle con snapshot del ítem.
type TransactionLine struct {
	ItemID   string
	Name     string
	Price    money.Amount
	Qty      int
	Subtotal money.Amount
}

// ItemCount suma las cantidades de todas las líneas.
func (t *Transaction) ItemCount() int {
	n := 0
	for _, l := range t.Lines {
		n += l.Qty
	}
	return n
}

// IsVoided indica si la transacción fue anulada.
func (t *Transaction) IsVoided() bool { return t.Status == TxStatusVoided }

// IsPaymentMethod indica si m es un método de pago aceptado.
func IsPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentTransfer:
		return true
	}
	return false
}
