package dto

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// TransactionLineRequest línea pedida: el precio y el nombre los fija el sistema de registro.
type TransactionLineRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Qty    int    `json:"qty" validate:"min=1,max=10000"`
}

// CreateTransactionRequest entrada para registrar una venta.
// ClientRef se mantiene igual en cada reintento del mismo checkout para deduplicar.
type CreateTransactionRequest struct {
	Items            []TransactionLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod    string                   `json:"payment_method" validate:"required"`
	PaymentAmount    money.Amount             `json:"payment_amount" validate:"gte=0,max=1000000000000000"`
	PaymentReference string                   `json:"payment_reference"`
	ClientRef        string                   `json:"client_ref" validate:"omitempty,max=64"`
}

// VoidTransactionRequest entrada para anular una venta.
type VoidTransactionRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=500"`
}

// TransactionQuery filtros del historial: date (un día) o start/end.
type TransactionQuery struct {
	Date      string `query:"date"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Status    string `query:"status" validate:"omitempty,oneof=selesai void"`
	PageRequest
}

// TransactionLineResponse línea con snapshot.
type TransactionLineResponse struct {
	ItemID   string       `json:"item_id"`
	Name     string       `json:"name"`
	Qty      int          `json:"qty"`
	Price    money.Amount `json:"price"`
	Subtotal money.Amount `json:"subtotal"`
}

// TransactionResponse salida de una transacción.
type TransactionResponse struct {
	ID                string                    `json:"id"`
	TransactionNumber string                    `json:"transaction_number"`
	ClientRef         string                    `json:"client_ref,omitempty"`
	Items             []TransactionLineResponse `json:"items"`
	Total             money.Amount              `json:"total"`
	TotalFormatted    string                    `json:"total_formatted"`
	PaymentMethod     string                    `json:"payment_method"`
	PaymentAmount     money.Amount              `json:"payment_amount"`
	ChangeAmount      money.Amount              `json:"change_amount"`
	PaymentReference  string                    `json:"payment_reference,omitempty"`
	Status            string                    `json:"status"`
	CreatedBy         string                    `json:"created_by"`
	CreatedByName     string                    `json:"created_by_name"`
	VoidReason        string                    `json:"void_reason,omitempty"`
	VoidedBy          string                    `json:"voided_by,omitempty"`
	VoidedByName      string                    `json:"voided_by_name,omitempty"`
	VoidedAt          *time.Time                `json:"voided_at,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// TransactionListResponse historial paginado.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         PageResponse          `json:"page"`
}

// ReceiptHeader datos del negocio para el comprobante.
type ReceiptHeader struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

// ReceiptResponse transacción más cabecera del comprobante.
type ReceiptResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Receipt     ReceiptHeader       `json:"receipt"`
}

// ToTransactionResponse mapea la entidad.
func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, TransactionLineResponse{ItemID: l.ItemID, Name: l.Name, Qty: l.Qty, Price: l.Price, Subtotal: l.Subtotal})
	}
	return TransactionResponse{
		ID:                t.ID,
		TransactionNumber: t.Number,
		ClientRef:         t.ClientRef,
		Items:             lines,
		Total:             t.Total,
		TotalFormatted:    money.Format(t.Total),
		PaymentMethod:     t.PaymentMethod,
		PaymentAmount:     t.PaymentAmount,
		ChangeAmount:      t.Change,
		PaymentReference:  t.PaymentReference,
		Status:            t.Status,
		CreatedBy:         t.CashierID,
		CreatedByName:     t.CashierName,
		VoidReason:        t.VoidReason,
		VoidedBy:          t.VoidedBy,
		VoidedByName:      t.VoidedByName,
		VoidedAt:          t.VoidedAt,
		CreatedAt:         t.CreatedAt,
	}
}

// ToTransactionList mapea una página del historial.
func ToTransactionList(txs []entity.Transaction, total, limit, offset int) TransactionListResponse {
	out := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(txs)),
		Page:         PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for i := range txs {
		out.Transactions = append(out.Transactions, ToTransactionResponse(&txs[i]))
	}
	return out
}

// FromTransactionResponse reconstruye la entidad (cliente remoto).
func FromTransactionResponse(r TransactionResponse, tenantID string) entity.Transaction {
	lines := make([]entity.TransactionLine, 0, len(r.Items))
	for _, l := range r.Items {
		lines = append(lines, entity.TransactionLine{ItemID: l.ItemID, Name: l.Name, Qty: l.Qty, Price: l.Price, Subtotal: l.Subtotal})
	}
	return entity.Transaction{
		ID:               r.ID,
		TenantID:         tenantID,
		Number:           r.TransactionNumber,
		ClientRef:        r.ClientRef,
		Lines:            lines,
		Total:            r.Total,
		PaymentMethod:    r.PaymentMethod,
		PaymentAmount:    r.PaymentAmount,
		Change:           r.ChangeAmount,
		PaymentReference: r.PaymentReference,
		Status:           r.Status,
		CashierID:        r.CreatedBy,
		CashierName:      r.CreatedByName,
		VoidReason:       r.VoidReason,
		VoidedBy:         r.VoidedBy,
		VoidedByName:     r.VoidedByName,
		VoidedAt:         r.VoidedAt,
		CreatedAt:        r.CreatedAt,
	}
}

// ToReceiptHeader cabecera del comprobante a partir del tenant.
func ToReceiptHeader(t *entity.Tenant) ReceiptHeader {
	if t == nil {
		return ReceiptHeader{BusinessName: "Toko"}
	}
	return ReceiptHeader{BusinessName: t.Name, Address: t.Address, Phone: t.Phone}
}
