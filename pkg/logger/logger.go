// Package logger envuelve zerolog para el POS. Las líneas de una operación de terminal
// llevan los campos de la sesión (negocio, usuario, rol) para poder seguir una venta de punta a punta.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Campos estándar de una sesión de terminal.
const (
	FieldSession = "session_id"
	FieldTenant  = "tenant_id"
	FieldUser    = "user_id"
	FieldRole    = "role"
)

// Config opciones para el logger.
type Config struct {
	Env      string // development -> consola legible; otro valor -> JSON
	Level    string // trace, debug, info, warn, error
	Service  string // nombre del proceso, va en cada línea
	Location *time.Location
	Output   io.Writer
}

// Logger wrapper sobre zerolog para inyección y consistencia.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado. Con Location las marcas de tiempo salen en la hora de la tienda.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Output != nil {
		w = cfg.Output
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	if loc := cfg.Location; loc != nil {
		zerolog.TimestampFunc = func() time.Time { return time.Now().In(loc) }
	}

	zctx := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}
	zl := zctx.Logger()

	// Redirigir el logger global de zerolog para librerías que lo usen
	log.Logger = zl

	return &Logger{zl: zl}
}

// Nop devuelve un logger que descarta todo; útil en tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel acepta los niveles de zerolog sin importar mayúsculas; vacío o desconocido es info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Named devuelve un sublogger con el campo component fijado.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Terminal sublogger de una sesión del POS. Los valores vacíos se omiten.
func (l *Logger) Terminal(sessionID, tenantID, userID, role string) *Logger {
	zctx := l.zl.With()
	for _, f := range [...]struct{ k, v string }{
		{FieldSession, sessionID},
		{FieldTenant, tenantID},
		{FieldUser, userID},
		{FieldRole, role},
	} {
		if f.v != "" {
			zctx = zctx.Str(f.k, f.v)
		}
	}
	return &Logger{zl: zctx.Logger()}
}
