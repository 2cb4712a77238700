package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
)

// Locals keys de la sesión autenticada en Fiber.
const (
	LocalSession  = "session"
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRole     = "role"
)

// sessionAuthenticator es lo mínimo que necesita el middleware; lo implementa *terminal.Service.
type sessionAuthenticator interface {
	Authenticate(token string) (*terminal.Session, error)
}

// AuthMiddleware valida el Bearer Token y carga la sesión del terminal en c.Locals.
// Un token válido de una sesión cerrada o expirada también responde 401.
func AuthMiddleware(auth sessionAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, code, msg := bearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg, Kind: domain.KindAuth.String()})
		}
		sess, err := auth.Authenticate(tokenString)
		if err != nil {
			return writeError(c, err)
		}
		p := sess.Principal()
		c.Locals(LocalSession, sess)
		c.Locals(LocalUserID, p.UserID)
		c.Locals(LocalTenantID, p.TenantID)
		c.Locals(LocalRole, string(p.Role))
		return c.Next()
	}
}

// bearerToken extrae el token del header Authorization o, para el websocket, del query ?token=.
func bearerToken(c *fiber.Ctx) (token, code, msg string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if q := strings.TrimSpace(c.Query("token")); q != "" {
			return q, "", ""
		}
		return "", "MISSING_TOKEN", "Authorization header wajib diisi"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "INVALID_TOKEN", "Format: Bearer <token>"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "MISSING_TOKEN", "Token kosong"
	}
	return token, "", ""
}

// RequireCapability corta la petición con 403 si el rol de la sesión no tiene la capacidad.
// Debe usarse DESPUÉS de AuthMiddleware. Los servicios repiten el chequeo; aquí evita parsear el cuerpo.
func RequireCapability(perm access.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return writeError(c, domain.ErrUnauthorized)
		}
		if err := access.Require(access.Role(role), perm); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// GetSession devuelve la sesión del contexto (después del middleware de auth).
func GetSession(c *fiber.Ctx) *terminal.Session {
	s, _ := c.Locals(LocalSession).(*terminal.Session)
	return s
}

// GetUserID devuelve el UserID del contexto.
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetTenantID devuelve el TenantID del contexto.
func GetTenantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTenantID).(string)
	return s
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
