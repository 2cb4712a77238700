// Package stock contiene las reglas puras del ledger de stock y de las alertas.
package stock

import (
	"math"
	"sort"
	"strings"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// MaxQuantity tope de un ajuste manual y del stock inicial.
const MaxQuantity = 1_000_000_000

// Severidades de alerta.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Apply calcula el stock resultante de un ajuste.
// subtract y sale nunca dejan stock negativo: se recorta en 0 y la entrada conserva la cantidad pedida.
func Apply(before int, adjType string, qty int) (int, error) {
	if qty < 0 {
		return before, domain.Invalid("Jumlah tidak boleh negatif")
	}
	switch adjType {
	case entity.AdjustAdd, entity.AdjustVoidReturn:
		if before > math.MaxInt-qty {
			return before, domain.ErrOutOfRange
		}
		return before + qty, nil
	case entity.AdjustSubtract, entity.AdjustSale:
		if before-qty < 0 {
			return 0, nil
		}
		return before - qty, nil
	case entity.AdjustSet:
		return qty, nil
	default:
		return before, domain.Invalid("Tipe penyesuaian tidak valid: %s", adjType)
	}
}

// ValidateUserAdjustment valida un ajuste pedido por un usuario: solo add/subtract/set y 0 < qty ≤ MaxQuantity.
func ValidateUserAdjustment(adjType string, qty int) error {
	if !entity.IsUserAdjustment(adjType) {
		return domain.Invalid("Tipe penyesuaian tidak valid: %s", adjType)
	}
	if qty <= 0 {
		return domain.Invalid("Jumlah harus lebih dari 0")
	}
	if qty > MaxQuantity {
		return domain.ErrOutOfRange
	}
	return nil
}

// Alert ítem con stock bajo o agotado.
type Alert struct {
	Item     entity.Item
	Status   string
	Severity string
}

// Classify devuelve la alerta del ítem; ok=false si no corresponde alerta
// (sin control de stock, inactivo o stock sobre el umbral).
func Classify(item entity.Item) (Alert, bool) {
	if !item.TrackStock || !item.IsActive {
		return Alert{}, false
	}
	switch item.StockStatus() {
	case entity.StockOut:
		return Alert{Item: item, Status: entity.StockOut, Severity: SeverityCritical}, true
	case entity.StockLow:
		return Alert{Item: item, Status: entity.StockLow, Severity: SeverityWarning}, true
	default:
		return Alert{}, false
	}
}

// Alerts filtra y ordena: críticas primero, luego por stock ascendente y nombre.
func Alerts(items []entity.Item) []Alert {
	out := make([]Alert, 0)
	for _, it := range items {
		if a, ok := Classify(it); ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity == SeverityCritical
		}
		if out[i].Item.Stock != out[j].Item.Stock {
			return out[i].Item.Stock < out[j].Item.Stock
		}
		return strings.ToLower(out[i].Item.Name) < strings.ToLower(out[j].Item.Name)
	})
	return out
}

// Summary contadores del inventario controlado.
type Summary struct {
	TotalTracked int
	LowStock     int
	OutOfStock   int
}

// Summarize cuenta los ítems activos con control de stock.
func Summarize(items []entity.Item) Summary {
	var s Summary
	for _, it := range items {
		if !it.TrackStock || !it.IsActive {
			continue
		}
		s.TotalTracked++
		switch it.StockStatus() {
		case entity.StockOut:
			s.OutOfStock++
		case entity.StockLow:
			s.LowStock++
		}
	}
	return s
}
