// Package cart implementa el carrito del terminal: líneas en orden de inserción,
// a lo sumo una por ítem, cantidades ≥ 1 y precio unitario capturado al agregar.
package cart

import (
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Line línea del carrito.
type Line struct {
	ItemID string
	Name   string
	Price  money.Amount
	Qty    int
}

// Subtotal precio × cantidad. El carrito acota precio y cantidad, así que no desborda.
func (l Line) Subtotal() money.Amount { return l.Price * money.Amount(l.Qty) }

// Cart no es seguro para uso concurrente; la sesión del terminal lo serializa.
// Invariante: cada precio ≤ money.MaxPrice, cada cantidad ≤ money.MaxQty y el total ≤ money.MaxTotal.
type Cart struct {
	lines []Line
}

// New crea un carrito vacío.
func New() *Cart { return &Cart{} }

func (c *Cart) index(itemID string) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// fits comprueba que el total siga en rango si la línea i pasa a qty unidades de price.
func (c *Cart) fits(i int, price money.Amount, qty int) error {
	if price < 0 || price > money.MaxPrice || qty > money.MaxQty {
		return domain.ErrOutOfRange
	}
	sub, err := price.Mul(qty)
	if err != nil {
		return err
	}
	total := sub
	for j, l := range c.lines {
		if j == i {
			continue
		}
		if total, err = money.Add(total, l.Subtotal()); err != nil {
			return err
		}
	}
	return nil
}

// Add agrega una unidad del ítem; si ya existe incrementa su cantidad.
// Rechaza con domain.ErrOutOfRange si el precio, la cantidad o el total exceden los límites.
func (c *Cart) Add(item *entity.Item) error {
	if i := c.index(item.ID); i >= 0 {
		return c.setAt(i, c.lines[i].Qty+1)
	}
	if err := c.fits(-1, item.Price, 1); err != nil {
		return err
	}
	c.lines = append(c.lines, Line{ItemID: item.ID, Name: item.Name, Price: item.Price, Qty: 1})
	return nil
}

func (c *Cart) setAt(i, qty int) error {
	if err := c.fits(i, c.lines[i].Price, qty); err != nil {
		return err
	}
	c.lines[i].Qty = qty
	return nil
}

// Remove quita la línea; no-op si no existe.
func (c *Cart) Remove(itemID string) {
	if i := c.index(itemID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQty fija la cantidad; qty ≤ 0 quita la línea.
func (c *Cart) SetQty(itemID string, qty int) error {
	i := c.index(itemID)
	if i < 0 {
		return nil
	}
	if qty <= 0 {
		c.Remove(itemID)
		return nil
	}
	return c.setAt(i, qty)
}

// Increment suma una unidad a una línea existente.
func (c *Cart) Increment(itemID string) error {
	if i := c.index(itemID); i >= 0 {
		return c.setAt(i, c.lines[i].Qty+1)
	}
	return nil
}

// Decrement resta una unidad; con cantidad 1 quita la línea.
func (c *Cart) Decrement(itemID string) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	if c.lines[i].Qty <= 1 {
		c.Remove(itemID)
		return
	}
	c.lines[i].Qty--
}

// Clear vacía el carrito.
func (c *Cart) Clear() { c.lines = nil }

// Lines copia de las líneas en orden de inserción.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total suma de subtotales; por el invariante nunca supera money.MaxTotal.
func (c *Cart) Total() money.Amount {
	var t money.Amount
	for _, l := range c.lines {
		t += l.Subtotal()
	}
	return t
}

// LineCount número de líneas.
func (c *Cart) LineCount() int { return len(c.lines) }

// ItemCount suma de cantidades.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }
