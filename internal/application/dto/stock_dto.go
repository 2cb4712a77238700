package dto

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

// AdjustStockRequest ajuste manual de stock (el ítem viene en la ruta).
type AdjustStockRequest struct {
	AdjustmentType string `json:"adjustment_type" validate:"required,oneof=add subtract set"`
	Quantity       int    `json:"quantity" validate:"min=1,max=1000000000"`
	Reason         string `json:"reason" validate:"max=500"`
}

// StockAdjustmentResponse entrada del ledger.
type StockAdjustmentResponse struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	ItemName       string    `json:"item_name"`
	AdjustmentType string    `json:"adjustment_type"`
	Label          string    `json:"label"`
	Quantity       int       `json:"quantity"`
	StockBefore    int       `json:"stock_before"`
	StockAfter     int       `json:"stock_after"`
	Reason         string    `json:"reason,omitempty"`
	TransactionID  string    `json:"transaction_id,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// StockHistoryResponse historial de un ítem, más reciente primero.
type StockHistoryResponse struct {
	ItemID  string                    `json:"item_id"`
	History []StockAdjustmentResponse `json:"history"`
}

// StockAlertResponse ítem en alerta.
type StockAlertResponse struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	Stock             int    `json:"stock"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	Status            string `json:"status"`
	Severity          string `json:"severity"`
}

// StockAlertsResponse listado de alertas.
type StockAlertsResponse struct {
	Alerts []StockAlertResponse `json:"alerts"`
	Total  int                  `json:"total"`
}

// StockSummaryCounters contadores del inventario controlado.
type StockSummaryCounters struct {
	TotalTrackedItems int `json:"total_tracked_items"`
	LowStockCount     int `json:"low_stock_count"`
	OutOfStockCount   int `json:"out_of_stock_count"`
}

// StockSummaryResponse ítems controlados más contadores.
type StockSummaryResponse struct {
	Summary StockSummaryCounters `json:"summary"`
	Items   []ItemResponse       `json:"items"`
}

// ToStockAdjustmentResponse mapea la entidad.
func ToStockAdjustmentResponse(a *entity.StockAdjustment) StockAdjustmentResponse {
	return StockAdjustmentResponse{
		ID:             a.ID,
		ItemID:         a.ItemID,
		ItemName:       a.ItemName,
		AdjustmentType: a.Type,
		Label:          entity.AdjustmentLabel(a.Type),
		Quantity:       a.Quantity,
		StockBefore:    a.StockBefore,
		StockAfter:     a.StockAfter,
		Reason:         a.Reason,
		TransactionID:  a.TransactionID,
		CreatedBy:      a.CreatedBy,
		CreatedByName:  a.CreatedByName,
		CreatedAt:      a.CreatedAt,
	}
}

// FromStockAdjustmentResponse reconstruye la entidad (cliente remoto).
func FromStockAdjustmentResponse(r StockAdjustmentResponse, tenantID string) entity.StockAdjustment {
	return entity.StockAdjustment{
		ID:            r.ID,
		TenantID:      tenantID,
		ItemID:        r.ItemID,
		ItemName:      r.ItemName,
		Type:          r.AdjustmentType,
		Quantity:      r.Quantity,
		StockBefore:   r.StockBefore,
		StockAfter:    r.StockAfter,
		Reason:        r.Reason,
		TransactionID: r.TransactionID,
		CreatedBy:     r.CreatedBy,
		CreatedByName: r.CreatedByName,
		CreatedAt:     r.CreatedAt,
	}
}

// ToStockAlerts mapea las alertas.
func ToStockAlerts(alerts []stock.Alert) StockAlertsResponse {
	out := StockAlertsResponse{Alerts: make([]StockAlertResponse, 0, len(alerts)), Total: len(alerts)}
	for _, a := range alerts {
		out.Alerts = append(out.Alerts, StockAlertResponse{
			ItemID:            a.Item.ID,
			Name:              a.Item.Name,
			Stock:             a.Item.Stock,
			LowStockThreshold: a.Item.LowStockThreshold,
			Status:            a.Status,
			Severity:          a.Severity,
		})
	}
	return out
}

// ToStockSummary mapea el resumen.
func ToStockSummary(s stock.Summary, items []entity.Item) StockSummaryResponse {
	out := StockSummaryResponse{
		Summary: StockSummaryCounters{
			TotalTrackedItems: s.TotalTracked,
			LowStockCount:     s.LowStock,
			OutOfStockCount:   s.OutOfStock,
		},
		Items: make([]ItemResponse, 0, len(items)),
	}
	for i := range items {
		out.Items = append(out.Items, ToItemResponse(&items[i]))
	}
	return out
}
