package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind clasifica los errores para que la capa de presentación decida cómo reaccionar:
// Validation se corrige en el formulario, Conflict obliga a refrescar, Auth cierra la sesión,
// Transient admite reintento con el mismo identificador de deduplicación.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error es el error de dominio tipado. Code es estable (contrato con el cliente), Msg es para el usuario.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Msg: "Data tidak ditemukan"}
	ErrInvalidInput       = &Error{Kind: KindValidation, Code: "VALIDATION", Msg: "Input tidak valid"}
	ErrDuplicate          = &Error{Kind: KindConflict, Code: "DUPLICATE", Msg: "Data sudah ada"}
	ErrUnauthorized       = &Error{Kind: KindAuth, Code: "UNAUTHORIZED", Msg: "Sesi tidak valid, silakan login kembali"}
	ErrInvalidCredentials = &Error{Kind: KindAuth, Code: "INVALID_CREDENTIALS", Msg: "Email atau password salah"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Msg: "Hanya pemilik yang bisa melakukan ini"}
	ErrConflict           = &Error{Kind: KindConflict, Code: "CONFLICT", Msg: "Data sudah berubah, silakan muat ulang"}
	ErrInsufficientStock  = &Error{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Msg: "Stok tidak mencukupi"}
	ErrAlreadyVoided      = &Error{Kind: KindConflict, Code: "ALREADY_VOIDED", Msg: "Transaksi sudah dibatalkan"}
	ErrInFlight           = &Error{Kind: KindConflict, Code: "IN_FLIGHT", Msg: "Permintaan sebelumnya masih diproses"}
	ErrCartLocked         = &Error{Kind: KindConflict, Code: "CART_LOCKED", Msg: "Keranjang sedang dalam proses pembayaran"}
	ErrCartEmpty          = &Error{Kind: KindValidation, Code: "CART_EMPTY", Msg: "Keranjang tidak boleh kosong", Err: ErrInvalidInput}
	ErrInsufficientPay    = &Error{Kind: KindValidation, Code: "INSUFFICIENT_PAYMENT", Msg: "Pembayaran kurang dari total", Err: ErrInvalidInput}
	ErrInvalidMethod      = &Error{Kind: KindValidation, Code: "INVALID_PAYMENT_METHOD", Msg: "Metode pembayaran tidak valid", Err: ErrInvalidInput}
	ErrReasonRequired     = &Error{Kind: KindValidation, Code: "REASON_REQUIRED", Msg: "Alasan pembatalan wajib diisi", Err: ErrInvalidInput}
	ErrUnavailable        = &Error{Kind: KindTransient, Code: "UNAVAILABLE", Msg: "Server tidak dapat dihubungi, coba lagi"}
	ErrOutOfRange         = &Error{Kind: KindValidation, Code: "OUT_OF_RANGE", Msg: "Jumlah atau nominal melebihi batas", Err: ErrInvalidInput}
)

// Invalid construye un error de validación con mensaje propio.
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindValidation, Code: "VALIDATION", Msg: fmt.Sprintf(format, args...), Err: ErrInvalidInput}
}

// Conflict construye un error de conflicto con código y mensaje propios.
func Conflict(code, msg string) error {
	return &Error{Kind: KindConflict, Code: code, Msg: msg, Err: ErrConflict}
}

// Transient envuelve un fallo de red o del servidor que admite reintento.
func Transient(err error) error {
	return &Error{Kind: KindTransient, Code: ErrUnavailable.Code, Msg: ErrUnavailable.Msg, Err: err}
}

// KindOf resuelve la clase de cualquier error, envuelto o no.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindInternal
}

// CodeOf devuelve el código estable del error (INTERNAL si no es de dominio).
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	if KindOf(err) == KindTransient {
		return ErrUnavailable.Code
	}
	return "INTERNAL"
}

// MessageOf devuelve el mensaje apto para el usuario; nunca expone detalles internos.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	if KindOf(err) == KindTransient {
		return ErrUnavailable.Msg
	}
	return "Terjadi kesalahan pada server"
}

// Retryable indica si la operación puede reintentarse tal cual.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}

// InsufficientStock conflicto de stock con el nombre del ítem y lo disponible.
func InsufficientStock(itemName string, available int) error {
	return &Error{
		Kind: KindConflict,
		Code: ErrInsufficientStock.Code,
		Msg:  fmt.Sprintf("Stok %s tidak mencukupi (tersisa %d)", itemName, available),
		Err:  ErrInsufficientStock,
	}
}
