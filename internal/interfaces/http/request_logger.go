package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog. 5xx sale como error, 4xx como warn.
// Las rutas autenticadas llevan los campos de la sesión.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// el ErrorHandler de la app escribe el status real
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		l := log
		if sess := GetSession(c); sess != nil {
			a := sess.Auth()
			l = log.Terminal(a.ID, a.Principal.TenantID, a.Principal.UserID, string(a.Principal.Role))
		}
		ev := l.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http")
		return nil
	}
}
