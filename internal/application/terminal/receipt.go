package terminal

import (
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// ReceiptRenderer genera el comprobante imprimible de una venta.
type ReceiptRenderer interface {
	Render(t *entity.Transaction, tenant *entity.Tenant) ([]byte, error)
}

// ReceiptFilename nombre del archivo del comprobante.
func ReceiptFilename(t *entity.Transaction) string {
	return "struk-" + t.Number + ".pdf"
}
