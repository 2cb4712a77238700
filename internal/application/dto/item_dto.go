package dto

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// CreateItemRequest entrada para crear un ítem del catálogo.
type CreateItemRequest struct {
	Name              string       `json:"name" validate:"required,notblank,max=200"`
	Price             money.Amount `json:"price" validate:"gte=0,max=1000000000000"`
	TrackStock        bool         `json:"track_stock"`
	Stock             int          `json:"stock" validate:"gte=0,max=1000000000"`
	LowStockThreshold *int         `json:"low_stock_threshold" validate:"omitempty,gte=0,max=1000000000"`
}

// UpdateItemRequest entrada para actualizar un ítem. El stock no se edita aquí: solo vía ajustes.
type UpdateItemRequest struct {
	Name              *string       `json:"name" validate:"omitempty,notblank,max=200"`
	Price             *money.Amount `json:"price" validate:"omitempty,gte=0,max=1000000000000"`
	IsActive          *bool         `json:"is_active"`
	TrackStock        *bool         `json:"track_stock"`
	LowStockThreshold *int          `json:"low_stock_threshold" validate:"omitempty,gte=0,max=1000000000"`
}

// ItemQuery filtros del listado.
type ItemQuery struct {
	ActiveOnly *bool  `query:"active_only"`
	Search     string `query:"search"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Price             money.Amount `json:"price"`
	PriceFormatted    string       `json:"price_formatted"`
	IsActive          bool         `json:"is_active"`
	TrackStock        bool         `json:"track_stock"`
	Stock             int          `json:"stock"`
	LowStockThreshold int          `json:"low_stock_threshold"`
	StockStatus       string       `json:"stock_status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ItemListResponse listado de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// ToItemResponse mapea la entidad.
func ToItemResponse(it *entity.Item) ItemResponse {
	return ItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		Price:             it.Price,
		PriceFormatted:    money.Format(it.Price),
		IsActive:          it.IsActive,
		TrackStock:        it.TrackStock,
		Stock:             it.Stock,
		LowStockThreshold: it.LowStockThreshold,
		StockStatus:       it.StockStatus(),
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}

// ToItemList mapea un listado.
func ToItemList(items []entity.Item) ItemListResponse {
	out := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: len(items)}
	for i := range items {
		out.Items = append(out.Items, ToItemResponse(&items[i]))
	}
	return out
}

// FromItemResponse reconstruye la entidad a partir de la respuesta (cliente remoto).
func FromItemResponse(r ItemResponse, tenantID string) entity.Item {
	return entity.Item{
		ID:                r.ID,
		TenantID:          tenantID,
		Name:              r.Name,
		Price:             r.Price,
		IsActive:          r.IsActive,
		TrackStock:        r.TrackStock,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
