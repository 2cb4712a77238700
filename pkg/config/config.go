package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Modos de backend soportados.
const (
	BackendRemote   = "remote"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Backend BackendConfig
	Stock   StockConfig
	Seed    SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Timezone string // zona horaria de la tienda, define el día calendario de los reportes
}

// Location devuelve la zona horaria configurada; UTC si no se puede cargar.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig selecciona el sistema de registro: API remota, ledger local en PostgreSQL o en memoria.
type BackendConfig struct {
	Mode          string
	RemoteBaseURL string
	RemoteTimeout time.Duration
}

// StockConfig valores por defecto del inventario.
type StockConfig struct {
	DefaultThreshold int
}

// SeedConfig negocio inicial para los modos locales (memory/postgres).
// Vacío si OwnerEmail no está definido.
type SeedConfig struct {
	StoreName     string
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
}

// Enabled indica si hay que crear el negocio inicial.
func (c SeedConfig) Enabled() bool { return c.OwnerEmail != "" }

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BACKEND_MODE, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	// .env al entorno del proceso; ignoramos error si no existe
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "aikasir"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Timezone: getString(v, "APP_TIMEZONE", "Asia/Jakarta"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "aikasir"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 720),
			Issuer:     getString(v, "JWT_ISSUER", "aikasir"),
		},
		HTTP: HTTPConfig{
			Host:         getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:         getInt(v, "HTTP_PORT", 8080),
			ReadTimeout:  time.Duration(getInt(v, "HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout: time.Duration(getInt(v, "HTTP_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Backend: BackendConfig{
			Mode:          strings.ToLower(getString(v, "BACKEND_MODE", BackendMemory)),
			RemoteBaseURL: strings.TrimRight(getString(v, "REMOTE_API_URL", ""), "/"),
			RemoteTimeout: time.Duration(getInt(v, "REMOTE_API_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Stock: StockConfig{
			DefaultThreshold: getInt(v, "STOCK_DEFAULT_THRESHOLD", 10),
		},
		Seed: SeedConfig{
			StoreName:     getString(v, "SEED_STORE_NAME", "Toko Contoh"),
			OwnerName:     getString(v, "SEED_OWNER_NAME", "Pemilik"),
			OwnerEmail:    getString(v, "SEED_OWNER_EMAIL", ""),
			OwnerPassword: getString(v, "SEED_OWNER_PASSWORD", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend.Mode {
	case BackendMemory, BackendPostgres:
	case BackendRemote:
		if c.Backend.RemoteBaseURL == "" {
			return fmt.Errorf("config: REMOTE_API_URL es obligatorio con BACKEND_MODE=remote")
		}
	default:
		return fmt.Errorf("config: BACKEND_MODE inválido %q", c.Backend.Mode)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET es obligatorio")
	}
	if c.Stock.DefaultThreshold < 0 {
		return fmt.Errorf("config: STOCK_DEFAULT_THRESHOLD no puede ser negativo")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
