package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/pkg/validator"
)

// statusFor traduce la clase del error de dominio a código HTTP.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindAuth:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con el código estable y el mensaje para el usuario; nunca el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	k := domain.KindOf(err)
	return c.Status(statusFor(k)).JSON(dto.ErrorResponse{
		Code:    domain.CodeOf(err),
		Message: domain.MessageOf(err),
		Kind:    k.String(),
	})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg, Kind: domain.KindValidation.String()})
}

// bindBody parsea y valida el cuerpo JSON. Devuelve false si ya respondió con 400.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "Format data tidak valid")
	}
	if errs := validator.ValidateStruct(out); errs != nil {
		return false, badRequest(c, "VALIDATION", "Data tidak valid: "+validator.Summary(errs))
	}
	return true, nil
}

// bindQuery parsea y valida los parámetros de consulta.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, badRequest(c, "INVALID_QUERY", "Parameter tidak valid")
	}
	if errs := validator.ValidateStruct(out); errs != nil {
		return false, badRequest(c, "VALIDATION", "Data tidak valid: "+validator.Summary(errs))
	}
	return true, nil
}

// ErrorHandler para fiber.Config: rutas inexistentes y errores que escapan de los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(fe.Code), Message: fe.Message})
	}
	return writeError(c, err)
}
