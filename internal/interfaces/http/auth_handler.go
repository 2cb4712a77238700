package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
)

// AuthHandler maneja login, sesión actual y logout.
type AuthHandler struct {
	svc *terminal.Service
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(svc *terminal.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	token, sess, err := h.svc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	auth := sess.Auth()
	return c.JSON(dto.LoginResponse{
		Token:  token,
		User:   dto.ToUserResponse(auth.Principal),
		Tenant: dto.ToTenantResponse(auth.Tenant),
	})
}

// Me godoc
// @Summary      Sesión actual
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	auth, err := h.svc.Me(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MeResponse{User: dto.ToUserResponse(auth.Principal), Tenant: dto.ToTenantResponse(auth.Tenant)})
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.svc.Logout(GetSession(c))
	return c.JSON(dto.MessageResponse{Message: "Berhasil keluar"})
}
