package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
)

// ItemHandler maneja el catálogo del tenant de la sesión.
type ItemHandler struct {
	svc *terminal.Service
}

// NewItemHandler construye el handler.
func NewItemHandler(svc *terminal.Service) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List godoc
// @Summary      Listar barang
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        active_only  query  bool    false  "Solo activos"
// @Param        search       query  string  false  "Búsqueda por nombre"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/v1/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var q dto.ItemQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	items, err := h.svc.ListItems(c.UserContext(), GetSession(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToItemList(items))
}

// GetByID godoc
// @Summary      Obtener barang por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.svc.GetItem(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if item == nil {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.ToItemResponse(item))
}

// Create godoc
// @Summary      Crear barang
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	item, err := h.svc.CreateItem(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToItemResponse(item))
}

// Update godoc
// @Summary      Actualizar barang
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	item, err := h.svc.UpdateItem(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToItemResponse(item))
}

// Delete godoc
// @Summary      Eliminar barang
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteItem(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
