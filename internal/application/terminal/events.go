package terminal

import "time"

// Tipos de evento publicados tras una mutación confirmada por el backend.
const (
	EventSaleCompleted = "sale.completed"
	EventSaleVoided    = "sale.voided"
	EventStockAdjusted = "stock.adjusted"
	EventItemChanged   = "item.changed"
	EventStaffChanged  = "staff.changed"
	EventSettings      = "settings.changed"
)

// Event aviso a los demás terminales del tenant para que refresquen sus vistas.
// Solo lleva identificadores: quien lo recibe vuelve a consultar al backend.
type Event struct {
	Type     string    `json:"type"`
	TenantID string    `json:"tenant_id"`
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
}

// EventPublisher destino de los eventos (hub websocket en la capa HTTP).
type EventPublisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
