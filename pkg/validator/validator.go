package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError describe un campo que no pasó la validación.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var validate = validator.New()

func init() {
	// uuid_required: string con UUID válido y distinto de Nil
	_ = validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, err := uuid.Parse(fl.Field().String())
		return err == nil && id != uuid.Nil
	})
	// notblank: string con algo más que espacios
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateStruct valida según los tags `validate` y devuelve los campos fallidos (nil si todo es válido).
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Tag: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// Summary convierte los errores de campo en un mensaje legible.
func Summary(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Param != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", e.Field, e.Tag, e.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", e.Field, e.Tag))
	}
	return strings.Join(parts, ", ")
}
