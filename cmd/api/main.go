package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/aikasir-api/internal/infrastructure/pdf"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/postgres"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/remote"
	httpRouter "github.com/jhoicas/aikasir-api/internal/interfaces/http"
	"github.com/jhoicas/aikasir-api/pkg/config"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

const (
	sessionSweepInterval = 5 * time.Minute
	hubBuffer            = 256
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    cfg.App.LogLevel,
		Service:  cfg.App.Name,
		Location: cfg.App.Location(),
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.Mode).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, closeBackend, err := buildBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar backend")
	}
	defer closeBackend()

	hub := httpRouter.NewHub(hubBuffer, log.Named("ws"))
	go hub.Run(ctx)

	svc := terminal.NewService(
		backend,
		terminal.NewRegistry(),
		terminal.TokenConfig{
			Secret:     cfg.JWT.Secret,
			Issuer:     cfg.JWT.Issuer,
			ExpMinutes: cfg.JWT.Expiration,
		},
		hub,
		infrapdf.NewMarotoReceiptRenderer(cfg.App.Location()),
		log.Named("terminal"),
	)

	// Barrido periódico de sesiones vencidas (y sus carritos).
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := svc.SweepExpired(); n > 0 {
					log.Debug().Int("sessions", n).Msg("sesiones vencidas eliminadas")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AIKasir API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "backend": cfg.Backend.Mode})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Service: svc,
		Hub:     hub,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}

// buildBackend selecciona el sistema de registro según BACKEND_MODE.
func buildBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (terminal.Backend, func(), error) {
	opts := ledger.Options{
		Location:         cfg.App.Location(),
		DefaultThreshold: cfg.Stock.DefaultThreshold,
	}

	switch cfg.Backend.Mode {
	case config.BackendRemote:
		client := remote.New(cfg.Backend.RemoteBaseURL, cfg.Backend.RemoteTimeout, cfg.App.Location(), log.Named("remote"))
		return client, func() {}, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		lb := ledger.New(postgres.Repositories(pool), opts, log.Named("ledger"))
		if err := seed(ctx, lb, cfg.Seed, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return lb, pool.Close, nil

	default:
		lb := ledger.New(memory.New().Repositories(), opts, log.Named("ledger"))
		if err := seed(ctx, lb, cfg.Seed, log); err != nil {
			return nil, nil, err
		}
		return lb, func() {}, nil
	}
}

// seed crea el negocio inicial si está configurado. Un email ya registrado no es error.
func seed(ctx context.Context, lb *ledger.Backend, sc config.SeedConfig, log *logger.Logger) error {
	if !sc.Enabled() {
		log.Warn().Msg("SEED_OWNER_EMAIL no definido: sin negocio inicial")
		return nil
	}
	tenant, owner, err := lb.Auth.Bootstrap(ctx, entity.Tenant{Name: sc.StoreName}, sc.OwnerName, sc.OwnerEmail, sc.OwnerPassword)
	if errors.Is(err, domain.ErrDuplicate) {
		log.Info().Str("email", sc.OwnerEmail).Msg("negocio inicial ya existe")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("tenant_id", tenant.ID).Str("user_id", owner.ID).Msg("negocio inicial creado")
	return nil
}
