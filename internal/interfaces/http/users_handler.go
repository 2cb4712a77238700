package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// UsersHandler gestión de empleados (solo pemilik).
type UsersHandler struct {
	svc *terminal.Service
}

func NewUsersHandler(svc *terminal.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// List godoc
// @Summary      Listar karyawan
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StaffListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/v1/users [get]
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStaffList(users))
}

// Create godoc
// @Summary      Tambah karyawan
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "name, email, password, role"
// @Success      201   {object}  dto.StaffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/users [post]
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	user, err := h.svc.CreateUser(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStaffResponse(user))
}

// Update godoc
// @Summary      Ubah karyawan
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del empleado"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.StaffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id} [put]
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	user, err := h.svc.UpdateUser(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStaffResponse(user))
}

// Deactivate godoc
// @Summary      Nonaktifkan karyawan
// @Tags         users
// @Security     Bearer
// @Param        id   path  string  true  "ID del empleado"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id} [delete]
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.svc.DeactivateUser(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
