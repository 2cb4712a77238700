// import_items carga el catálogo de un negocio desde un CSV exportado por otro sistema POS.
//
// Uso: go run ./cmd/import_items -email pemilik@toko.id -password ... [-encoding windows-1252] [-sep ;] items.csv
//
// Columnas: nombre, precio, stock [, track_stock [, umbral]]. La primera fila es cabecera.
// Usa el backend configurado (BACKEND_MODE remote o postgres) con la cuenta indicada.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/postgres"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/remote"
	"github.com/jhoicas/aikasir-api/pkg/config"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email del pemilik")
	password := flag.String("password", "", "password del pemilik")
	encoding := flag.String("encoding", "windows-1252", "codificación del CSV: utf-8, windows-1252, iso-8859-1")
	sep := flag.String("sep", ";", "separador de columnas")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_items [flags] archivo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if *sep == "" {
		fmt.Fprintln(os.Stderr, "-sep no puede estar vacío")
		os.Exit(2)
	}
	r, err := decoder(f, *encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	rows, err := parseItems(r, []rune(*sep)[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d ítems leídos\n", len(rows))
	if *dryRun {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import_items", Location: cfg.App.Location()})

	ctx := context.Background()
	backend, closeFn, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar backend")
	}
	defer closeFn()

	p, _, err := backend.Login(ctx, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("login")
	}

	created, failed := 0, 0
	for i, in := range rows {
		item, err := backend.CreateItem(ctx, p, in)
		if err != nil {
			failed++
			log.Warn().Int("row", i+2).Str("name", in.Name).Str("code", domain.CodeOf(err)).Msg(domain.MessageOf(err))
			if domain.Retryable(err) {
				log.Fatal().Err(err).Msg("backend no disponible, importación interrumpida")
			}
			continue
		}
		created++
		log.Debug().Str("item_id", item.ID).Str("name", item.Name).Msg("ítem creado")
	}
	log.Info().Int("created", created).Int("failed", failed).Msg("importación terminada")
}

// openBackend abre el sistema de registro. El modo memory no tiene sentido aquí: los datos se perderían.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (terminal.Backend, func(), error) {
	switch cfg.Backend.Mode {
	case config.BackendRemote:
		return remote.New(cfg.Backend.RemoteBaseURL, cfg.Backend.RemoteTimeout, cfg.App.Location(), log), func() {}, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		opts := ledger.Options{Location: cfg.App.Location(), DefaultThreshold: cfg.Stock.DefaultThreshold}
		return ledger.New(postgres.Repositories(pool), opts, log), pool.Close, nil
	default:
		return nil, nil, errors.New("import_items requiere BACKEND_MODE=remote o postgres")
	}
}

// decoder envuelve r para convertir la codificación del archivo a UTF-8.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada %q", encoding)
	}
}

// parseItems lee el CSV (con cabecera) y devuelve las solicitudes de alta.
func parseItems(r io.Reader, sep rune) ([]dto.CreateItemRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	out := make([]dto.CreateItemRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperan al menos 3 columnas", line)
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", line)
		}
		price, err := parseRupiah(rec[1])
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio: %w", line, err)
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("fila %d: stock inválido %q", line, rec[2])
		}
		req := dto.CreateItemRequest{Name: name, Price: price, Stock: stock, TrackStock: true}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			track, err := strconv.ParseBool(strings.TrimSpace(rec[3]))
			if err != nil {
				return nil, fmt.Errorf("fila %d: track_stock inválido %q", line, rec[3])
			}
			req.TrackStock = track
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			th, err := strconv.Atoi(strings.TrimSpace(rec[4]))
			if err != nil || th < 0 {
				return nil, fmt.Errorf("fila %d: umbral inválido %q", line, rec[4])
			}
			req.LowStockThreshold = &th
		}
		out = append(out, req)
	}
	return out, nil
}

// parseRupiah acepta "15000", "15.000" y "Rp 15.000". Sin decimales.
func parseRupiah(s string) (money.Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("monto inválido %q", s)
	}
	return money.Amount(n), nil
}
