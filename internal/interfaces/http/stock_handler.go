package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// StockHandler ajustes manuales, historial y alertas de stock.
type StockHandler struct {
	svc *terminal.Service
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *terminal.Service) *StockHandler {
	return &StockHandler{svc: svc}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  add | subtract | set. subtract no deja el stock por debajo de cero.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        item_id  path  string                  true  "ID del ítem"
// @Param        body     body  dto.AdjustStockRequest  true  "Tipo, cantidad y motivo"
// @Success      201      {object}  dto.StockAdjustmentResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/v1/stock/{item_id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	adj, err := h.svc.AdjustStock(c.UserContext(), GetSession(c), c.Params("item_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockAdjustmentResponse(adj))
}

// History godoc
// @Summary      Historial de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id  path   string  true   "ID del ítem"
// @Param        limit    query  int     false  "Límite"  default(50)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockHistoryResponse
// @Router       /api/v1/stock/{item_id}/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	itemID := c.Params("item_id")
	entries, err := h.svc.StockHistoryPage(c.UserContext(), GetSession(c), itemID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.StockHistoryResponse{ItemID: itemID, History: make([]dto.StockAdjustmentResponse, 0, len(entries))}
	for i := range entries {
		out.History = append(out.History, dto.ToStockAdjustmentResponse(&entries[i]))
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      Alertas de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockAlertsResponse
// @Router       /api/v1/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.svc.StockAlerts(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockAlerts(alerts))
}

// Summary godoc
// @Summary      Resumen de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        low_only  query  bool  false  "Solo hampir habis y habis"
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/v1/stock/summary [get]
func (h *StockHandler) Summary(c *fiber.Ctx) error {
	summary, items, err := h.svc.StockSummary(c.UserContext(), GetSession(c), c.QueryBool("low_only"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockSummary(summary, items))
}
