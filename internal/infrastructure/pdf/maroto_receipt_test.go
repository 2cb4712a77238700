package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/pdf"
)

func sampleTransaction() *entity.Transaction {
	return &entity.Transaction{
		ID:     "tx-1",
		Number: "202610180001",
		Lines: []entity.TransactionLine{
			{ItemID: "i1", Name: "Kopi Susu", Price: 15000, Qty: 2, Subtotal: 30000},
			{ItemID: "i2", Name: "Roti Bakar", Price: 12000, Qty: 1, Subtotal: 12000},
		},
		Total:         42000,
		PaymentMethod: entity.PaymentCash,
		PaymentAmount: 50000,
		Change:        8000,
		Status:        entity.TxStatusCompleted,
		CashierName:   "Sari",
		CreatedAt:     time.Date(2026, 10, 18, 3, 15, 0, 0, time.UTC),
	}
}

func TestRender_GeneraPDF(t *testing.T) {
	r := pdf.NewMarotoReceiptRenderer(time.FixedZone("WIB", 7*3600))
	tenant := &entity.Tenant{ID: "t1", Name: "Warung Sari", Address: "Jl. Melati 5", Phone: "0812"}

	out, err := r.Render(sampleTransaction(), tenant)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_AnuladaSinTenant(t *testing.T) {
	tx := sampleTransaction()
	tx.Status = entity.TxStatusVoided
	tx.VoidReason = "salah input"
	tx.PaymentMethod = entity.PaymentQRIS
	tx.PaymentAmount = tx.Total
	tx.Change = 0
	tx.PaymentReference = "QR-889"

	out, err := pdf.NewMarotoReceiptRenderer(nil).Render(tx, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRender_TransaccionNil(t *testing.T) {
	_, err := pdf.NewMarotoReceiptRenderer(nil).Render(nil, nil)
	assert.Error(t, err)
}
