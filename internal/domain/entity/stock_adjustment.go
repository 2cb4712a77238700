package entity

import "time"

// Tipos de ajuste del ledger de stock.
// add/subtract/set los origina un usuario; sale y void_return solo el sistema.
const (
	AdjustAdd        = "add"
	AdjustSubtract   = "subtract"
	AdjustSet        = "set"
	AdjustSale       = "sale"
	AdjustVoidReturn = "void_return"
)

// StockAdjustment es una entrada inmutable del ledger de stock.
// Quantity es la cantidad solicitada; StockBefore/StockAfter reflejan lo aplicado.
type StockAdjustment struct {
	ID            string
	TenantID      string
	ItemID        string
	ItemName      string
	Type          string
	Quantity      int
	StockBefore   int
	StockAfter    int
	Reason        string
	TransactionID string // venta o anulación que originó la entrada (vacío en ajustes manuales)
	CreatedBy     string
	CreatedByName string
	CreatedAt     time.Time
}

// Delta devuelve el cambio efectivo de stock.
func (a *StockAdjustment) Delta() int { return a.StockAfter - a.StockBefore }

// AdjustmentLabel etiqueta visible de cada tipo.
func AdjustmentLabel(t string) string {
	switch t {
	case AdjustAdd:
		return "Tambah"
	case AdjustSubtract:
		return "Kurang"
	case AdjustSet:
		return "Set"
	case AdjustSale:
		return "Penjualan"
	case AdjustVoidReturn:
		return "Batal Transaksi"
	default:
		return t
	}
}

// IsUserAdjustment indica si el tipo puede originarlo un usuario.
func IsUserAdjustment(t string) bool {
	switch t {
	case AdjustAdd, AdjustSubtract, AdjustSet:
		return true
	}
	return false
}
