// Package money contiene las primitivas monetarias del POS.
// Los montos son enteros en la unidad mínima (Rupiah); nunca se usa punto flotante.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/aikasir-api/internal/domain"
)

// Amount es un monto en Rupiah.
type Amount int64

// Límites de entrada. Con ellos precio × cantidad y la suma de una venta caben en int64.
const (
	// MaxPrice precio unitario (1 triliun).
	MaxPrice Amount = 1_000_000_000_000
	// MaxTotal total de una venta y monto pagado.
	MaxTotal Amount = 1_000_000_000_000_000
	// MaxQty unidades por línea.
	MaxQty = 10_000
)

// Mul multiplica el monto por una cantidad entera.
// Falla con domain.ErrOutOfRange si el resultado sale de ±MaxTotal.
func (a Amount) Mul(qty int) (Amount, error) {
	if a == 0 || qty == 0 {
		return 0, nil
	}
	q := Amount(qty)
	if !a.inRange() || !q.inRange() {
		return 0, domain.ErrOutOfRange
	}
	if abs(a) > MaxTotal/abs(q) {
		return 0, domain.ErrOutOfRange
	}
	return a * q, nil
}

// Add suma dos montos con el mismo límite que Mul.
func Add(a, b Amount) (Amount, error) {
	if !a.inRange() || !b.inRange() {
		return 0, domain.ErrOutOfRange
	}
	s := a + b
	if !s.inRange() {
		return 0, domain.ErrOutOfRange
	}
	return s, nil
}

// Sum suma los montos; falla en cuanto un parcial sale de rango.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (a Amount) inRange() bool { return a >= -MaxTotal && a <= MaxTotal }

func abs(a Amount) Amount {
	if a < 0 {
		return -a
	}
	return a
}

// String formatea con Format.
func (a Amount) String() string { return Format(a) }

// Format devuelve la representación "Rp 15.000". Solo para mostrar.
func Format(a Amount) string {
	if a < 0 {
		return "-Rp " + group(-int64(a))
	}
	return "Rp " + group(int64(a))
}

// Digits formatea sin prefijo de moneda: 1500000 → "1.500.000".
func Digits(a Amount) string {
	if a < 0 {
		return "-" + group(-int64(a))
	}
	return group(int64(a))
}

// group agrupa miles con la convención de Indonesia (punto).
func group(n int64) string {
	return message.NewPrinter(language.Indonesian).Sprintf("%d", n)
}

// QuickAmounts sugiere montos de pago en efectivo: el total exacto y el total
// redondeado hacia arriba a 10.000, 50.000 y 100.000. Sin duplicados, ascendente.
func QuickAmounts(total Amount) []Amount {
	if total <= 0 {
		return nil
	}
	out := []Amount{total}
	for _, step := range []Amount{10_000, 50_000, 100_000} {
		c := ceilTo(total, step)
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

func ceilTo(a, step Amount) Amount {
	return ((a + step - 1) / step) * step
}
