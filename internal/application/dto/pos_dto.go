package dto

import (
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// AddCartItemRequest agrega un ítem al carrito de la sesión.
type AddCartItemRequest struct {
	ItemID string `json:"item_id" validate:"required,notblank"`
}

// SetCartQtyRequest fija la cantidad de una línea; 0 la quita.
type SetCartQtyRequest struct {
	Qty int `json:"qty" validate:"min=0,max=10000"`
}

// PayRequest pago del checkout abierto. Amount solo cuenta para tunai.
type PayRequest struct {
	PaymentMethod    string       `json:"payment_method" validate:"required,oneof=tunai qris transfer"`
	PaymentAmount    money.Amount `json:"payment_amount" validate:"gte=0,max=1000000000000000"`
	PaymentReference string       `json:"payment_reference" validate:"max=100"`
}

// CartLineResponse línea del carrito.
type CartLineResponse struct {
	ItemID   string       `json:"item_id"`
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	Qty      int          `json:"qty"`
	Subtotal money.Amount `json:"subtotal"`
}

// CartResponse estado del carrito y del checkout.
type CartResponse struct {
	Lines          []CartLineResponse `json:"lines"`
	Total          money.Amount       `json:"total"`
	TotalFormatted string             `json:"total_formatted"`
	LineCount      int                `json:"line_count"`
	ItemCount      int                `json:"item_count"`
	Phase          string             `json:"phase"`
	ClientRef      string             `json:"client_ref,omitempty"`
	Paying         bool               `json:"paying"`
	QuickAmounts   []money.Amount     `json:"quick_amounts,omitempty"`
}

// PayResponse venta confirmada y el carrito ya vacío.
type PayResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Cart        CartResponse        `json:"cart"`
}
