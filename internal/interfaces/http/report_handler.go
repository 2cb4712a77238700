package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// ReportHandler reportes del periodo, cierre diario y exportación.
type ReportHandler struct {
	svc *terminal.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *terminal.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Summary godoc
// @Summary      Reporte de ventas del periodo
// @Description  Rango inclusivo en la zona horaria del negocio; sin fechas es hoy. Las ventas anuladas no suman.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.ReportSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	var q dto.ReportQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	r, err := h.svc.ReportSummary(c.UserContext(), GetSession(c), q.StartDate, q.EndDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToReportSummary(r))
}

// Daily godoc
// @Summary      Cierre del día
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "Día (YYYY-MM-DD), por defecto hoy"
// @Success      200  {object}  dto.DailyReportResponse
// @Router       /api/v1/reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	d, err := h.svc.DailyReport(c.UserContext(), GetSession(c), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToDailyReport(d))
}

// Export godoc
// @Summary      Exportar ventas
// @Description  Mismo documento en JSON o CSV, incluye ventas anuladas con su estado.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Produce      text/csv
// @Param        start_date  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        format      query  string  false  "json | csv"  default(json)
// @Success      200  {object}  dto.ExportResponse
// @Router       /api/v1/reports/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	var q dto.ReportQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	file, err := h.svc.Export(c.UserContext(), GetSession(c), q.StartDate, q.EndDate, q.Format)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return c.Send(file.Body)
}
