package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/aikasir-api/internal/domain"
)

func TestDecodeError_ClasePorStatus(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   domain.Kind
		is     error
	}{
		{400, `{"code":"VALIDATION","message":"Data tidak valid"}`, domain.KindValidation, domain.ErrInvalidInput},
		{401, `{"code":"UNAUTHORIZED","message":"Sesi tidak valid"}`, domain.KindAuth, domain.ErrUnauthorized},
		{401, `{"code":"INVALID_CREDENTIALS","message":"Email atau password salah"}`, domain.KindAuth, domain.ErrInvalidCredentials},
		{403, `{"code":"FORBIDDEN","message":"x"}`, domain.KindForbidden, domain.ErrForbidden},
		{404, `{"code":"NOT_FOUND","message":"x"}`, domain.KindNotFound, domain.ErrNotFound},
		{409, `{"code":"ALREADY_VOIDED","message":"Transaksi sudah dibatalkan"}`, domain.KindConflict, domain.ErrAlreadyVoided},
		{409, `{"code":"INSUFFICIENT_STOCK","message":"Stok Teh tidak mencukupi (tersisa 1)"}`, domain.KindConflict, domain.ErrInsufficientStock},
		{500, `{"code":"INTERNAL","message":"Terjadi kesalahan"}`, domain.KindTransient, nil},
		{502, `<html>bad gateway</html>`, domain.KindTransient, nil},
		{503, ``, domain.KindTransient, nil},
	}
	for _, tc := range cases {
		err := decodeError(tc.status, []byte(tc.body))
		assert.Equal(t, tc.kind, domain.KindOf(err), "status %d", tc.status)
		if tc.is != nil {
			assert.True(t, errors.Is(err, tc.is), "status %d debe envolver %v", tc.status, tc.is)
		}
	}
}

// El mensaje del servidor llega tal cual al usuario; los 5xx muestran el genérico.
func TestDecodeError_Mensajes(t *testing.T) {
	err := decodeError(409, []byte(`{"code":"INSUFFICIENT_STOCK","message":"Stok Teh tidak mencukupi (tersisa 1)"}`))
	assert.Equal(t, "Stok Teh tidak mencukupi (tersisa 1)", domain.MessageOf(err))
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.CodeOf(err))

	err = decodeError(500, []byte(`{"code":"INTERNAL","message":"pq: connection refused"}`))
	assert.Equal(t, domain.ErrUnavailable.Msg, domain.MessageOf(err))
	assert.True(t, domain.Retryable(err))
}
