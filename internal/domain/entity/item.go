package entity

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Estados de stock visibles en el catálogo y en las alertas.
const (
	StockAvailable = "Tersedia"
	StockLow       = "Hampir Habis"
	StockOut       = "Habis"
)

// DefaultLowStockThreshold umbral usado cuando el ítem no define uno propio.
const DefaultLowStockThreshold = 10

// Item representa un producto del catálogo de un tenant.
// Stock es la proyección cacheada del ledger de ajustes; solo el ledger la modifica.
type Item struct {
	ID                string
	TenantID          string
	Name              string
	Price             money.Amount
	IsActive          bool
	TrackStock        bool
	Stock             int
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StockStatus clasifica el stock actual: Habis (≤0), Hampir Habis (≤ umbral) o Tersedia.
// Para ítems sin control de stock siempre es Tersedia.
func (i *Item) StockStatus() string {
	if !i.TrackStock {
		return StockAvailable
	}
	switch {
	case i.Stock <= 0:
		return StockOut
	case i.Stock <= i.LowStockThreshold:
		return StockLow
	default:
		return StockAvailable
	}
}
