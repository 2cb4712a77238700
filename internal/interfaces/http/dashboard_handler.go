package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// DashboardHandler maneja el tablero del día.
type DashboardHandler struct {
	svc *terminal.Service
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(svc *terminal.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Today devuelve las ventas de hoy, los 5 más vendidos y los contadores de stock.
// GET /api/v1/dashboard/today
//
// No requiere parámetros; el día se calcula en la zona horaria del negocio.
func (h *DashboardHandler) Today(c *fiber.Ctx) error {
	d, err := h.svc.Dashboard(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToDashboard(d))
}
