package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// SettingsHandler perfil del negocio y password propio.
type SettingsHandler struct {
	svc *terminal.Service
}

func NewSettingsHandler(svc *terminal.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get godoc
// @Summary      Profil toko
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TenantResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	auth, err := h.svc.Me(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTenantResponse(auth.Tenant))
}

// Update godoc
// @Summary      Ubah profil toko
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSettingsRequest  true  "name, address, phone"
// @Success      200   {object}  dto.TenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSettingsRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	tenant, err := h.svc.UpdateSettings(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTenantResponse(*tenant))
}

// ChangePassword godoc
// @Summary      Ganti password
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePasswordRequest  true  "current_password, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/password [put]
func (h *SettingsHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if err := h.svc.ChangePassword(c.UserContext(), GetSession(c), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password berhasil diubah"})
}
