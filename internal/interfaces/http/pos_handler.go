package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// POSHandler carrito y checkout de la sesión. Cada respuesta lleva el carrito completo
// para que la UI no tenga que recalcular nada.
type POSHandler struct {
	svc *terminal.Service
}

// NewPOSHandler construye el handler.
func NewPOSHandler(svc *terminal.Service) *POSHandler {
	return &POSHandler{svc: svc}
}

func toCartResponse(v terminal.CartView) dto.CartResponse {
	out := dto.CartResponse{
		Lines:          make([]dto.CartLineResponse, 0, len(v.Lines)),
		Total:          v.Total,
		TotalFormatted: money.Format(v.Total),
		LineCount:      v.LineCount,
		ItemCount:      v.ItemCount,
		Phase:          string(v.Phase),
		ClientRef:      v.ClientRef,
		Paying:         v.Paying,
		QuickAmounts:   v.QuickAmounts,
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, dto.CartLineResponse{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.Price,
			Qty:      l.Qty,
			Subtotal: l.Subtotal(),
		})
	}
	return out
}

// cartResult responde con el carrito; ante error, el cuerpo de error.
func cartResult(c *fiber.Ctx, v terminal.CartView, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toCartResponse(v))
}

// Cart godoc
// @Summary      Carrito de la sesión
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/v1/pos/cart [get]
func (h *POSHandler) Cart(c *fiber.Ctx) error {
	return c.JSON(toCartResponse(GetSession(c).Cart()))
}

// AddItem godoc
// @Summary      Agregar ítem al carrito
// @Description  Si el ítem ya está en el carrito suma 1. El stock se verifica al pagar.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "item_id"
// @Success      200   {object}  dto.CartResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/cart/items [post]
func (h *POSHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	v, err := h.svc.AddToCart(c.UserContext(), GetSession(c), in.ItemID)
	return cartResult(c, v, err)
}

// SetQty godoc
// @Summary      Fijar cantidad
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        item_id  path  string                 true  "ID del ítem"
// @Param        body     body  dto.SetCartQtyRequest  true  "qty (0 quita la línea)"
// @Success      200      {object}  dto.CartResponse
// @Router       /api/v1/pos/cart/items/{item_id} [put]
func (h *POSHandler) SetQty(c *fiber.Ctx) error {
	var in dto.SetCartQtyRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	v, err := h.svc.SetCartQty(GetSession(c), c.Params("item_id"), in.Qty)
	return cartResult(c, v, err)
}

// Increment godoc
// @Summary      Sumar 1
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del ítem"
// @Success      200      {object}  dto.CartResponse
// @Router       /api/v1/pos/cart/items/{item_id}/increment [post]
func (h *POSHandler) Increment(c *fiber.Ctx) error {
	v, err := h.svc.IncrementCart(GetSession(c), c.Params("item_id"))
	return cartResult(c, v, err)
}

// Decrement godoc
// @Summary      Restar 1
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del ítem"
// @Success      200      {object}  dto.CartResponse
// @Router       /api/v1/pos/cart/items/{item_id}/decrement [post]
func (h *POSHandler) Decrement(c *fiber.Ctx) error {
	v, err := h.svc.DecrementCart(GetSession(c), c.Params("item_id"))
	return cartResult(c, v, err)
}

// RemoveItem godoc
// @Summary      Quitar línea
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del ítem"
// @Success      200      {object}  dto.CartResponse
// @Router       /api/v1/pos/cart/items/{item_id} [delete]
func (h *POSHandler) RemoveItem(c *fiber.Ctx) error {
	v, err := h.svc.RemoveFromCart(GetSession(c), c.Params("item_id"))
	return cartResult(c, v, err)
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/v1/pos/cart [delete]
func (h *POSHandler) Clear(c *fiber.Ctx) error {
	v, err := h.svc.ClearCart(GetSession(c))
	return cartResult(c, v, err)
}

// BeginCheckout godoc
// @Summary      Abrir cobro
// @Description  Bloquea el carrito y fija la referencia de deduplicación del pago.
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/checkout [post]
func (h *POSHandler) BeginCheckout(c *fiber.Ctx) error {
	v, err := h.svc.BeginCheckout(GetSession(c))
	return cartResult(c, v, err)
}

// CancelCheckout godoc
// @Summary      Cancelar cobro
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/checkout/cancel [post]
func (h *POSHandler) CancelCheckout(c *fiber.Ctx) error {
	v, err := h.svc.CancelCheckout(GetSession(c))
	return cartResult(c, v, err)
}

// Pay godoc
// @Summary      Pagar
// @Description  Solo un acuse del sistema de registro vacía el carrito. Ante 503 se puede reintentar sin duplicar la venta.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PayRequest  true  "Método, monto y referencia"
// @Success      201   {object}  dto.PayResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/pay [post]
func (h *POSHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	sess := GetSession(c)
	t, err := h.svc.Pay(c.UserContext(), sess, terminal.PayRequest{
		Method:    in.PaymentMethod,
		Amount:    in.PaymentAmount,
		Reference: in.PaymentReference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PayResponse{
		Transaction: dto.ToTransactionResponse(t),
		Cart:        toCartResponse(sess.Cart()),
	})
}
