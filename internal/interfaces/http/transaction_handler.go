package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// TransactionHandler historial, anulación y comprobantes de ventas.
type TransactionHandler struct {
	svc *terminal.Service
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(svc *terminal.Service) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Venta armada por otro terminal. Reintentos con el mismo client_ref devuelven la venta original.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "Líneas y pago"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	t, err := h.svc.SubmitTransaction(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransactionResponse(t))
}

// List godoc
// @Summary      Historial de ventas
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        date        query  string  false  "Un día (YYYY-MM-DD)"
// @Param        start_date  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        status      query  string  false  "selesai | void"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var q dto.TransactionQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	q.DefaultPage()
	txs, total, err := h.svc.ListTransactions(c.UserContext(), GetSession(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransactionList(txs, total, q.Limit, q.Offset))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.svc.GetTransaction(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Void godoc
// @Summary      Anular venta
// @Description  Restituye el stock de los ítems controlados. Una venta ya anulada responde 409.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la venta"
// @Param        body  body  dto.VoidTransactionRequest  true  "Motivo"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id}/void [post]
func (h *TransactionHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidTransactionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	t, err := h.svc.Void(c.UserContext(), GetSession(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Receipt godoc
// @Summary      Comprobante de venta
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.ReceiptResponse
// @Router       /api/v1/transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	t, tenant, err := h.svc.Receipt(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReceiptResponse{
		Transaction: dto.ToTransactionResponse(t),
		Receipt:     dto.ToReceiptHeader(&tenant),
	})
}

// ReceiptPDF godoc
// @Summary      Comprobante imprimible
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Router       /api/v1/transactions/{id}/receipt.pdf [get]
func (h *TransactionHandler) ReceiptPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.svc.ReceiptPDF(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
