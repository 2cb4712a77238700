package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
	"github.com/jhoicas/aikasir-api/pkg/jwt"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// TokenConfig firma de los tokens de sesión del terminal.
type TokenConfig struct {
	Secret     string
	Issuer     string
	ExpMinutes int
}

// Service punto de entrada de la capa de presentación al núcleo del terminal.
type Service struct {
	backend  Backend
	sessions *Registry
	tokens   TokenConfig
	events   EventPublisher
	receipts ReceiptRenderer
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el servicio. events y receipts pueden ser nil.
func NewService(backend Backend, sessions *Registry, tokens TokenConfig, events EventPublisher, receipts ReceiptRenderer, log *logger.Logger) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		backend:  backend,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		receipts: receipts,
		log:      log,
		now:      time.Now,
	}
}

// Login autentica contra el backend, abre una sesión y devuelve su token firmado.
func (s *Service) Login(ctx context.Context, in dto.LoginRequest) (string, *Session, error) {
	principal, tenant, err := s.backend.Login(ctx, in.Email, in.Password)
	if err != nil {
		return "", nil, s.observe(nil, "login", err)
	}
	if tenant == nil {
		tenant = &entity.Tenant{ID: principal.TenantID}
	}

	sid := uuid.New().String()
	token, err := jwt.Generate(s.tokens.Secret, s.tokens.Issuer, s.tokens.ExpMinutes, jwt.Claims{
		UserID:    principal.UserID,
		TenantID:  principal.TenantID,
		Role:      string(principal.Role),
		SessionID: sid,
	})
	if err != nil {
		return "", nil, fmt.Errorf("firmar token: %w", err)
	}

	sess := newSession(AuthSession{
		ID:        sid,
		Principal: principal,
		Tenant:    *tenant,
		ExpiresAt: s.now().Add(time.Duration(s.tokens.ExpMinutes) * time.Minute),
	})
	s.sessions.put(sess)

	s.logFor(sess).Info().Msg("sesión abierta")
	return token, sess, nil
}

// Authenticate resuelve la sesión del token. Token inválido, sesión cerrada o expirada: ErrUnauthorized.
func (s *Service) Authenticate(token string) (*Session, error) {
	claims, err := jwt.Parse(s.tokens.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	sess := s.sessions.Get(claims.SessionID)
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	auth := sess.Auth()
	if auth.Principal.UserID != claims.UserID || auth.Principal.TenantID != claims.TenantID {
		return nil, domain.ErrUnauthorized
	}
	if auth.Expired(s.now()) {
		s.sessions.Drop(auth.ID)
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// Logout cierra la sesión y descarta su carrito.
func (s *Service) Logout(sess *Session) {
	auth := sess.Auth()
	s.sessions.Drop(auth.ID)
	s.logFor(sess).Info().Msg("sesión cerrada")
}

// SweepExpired elimina las sesiones vencidas.
func (s *Service) SweepExpired() int {
	return s.sessions.Sweep(s.now())
}

// observe aplica la política común de errores del backend: Auth cierra la sesión,
// Transient se registra para diagnóstico. El error se devuelve sin cambios.
func (s *Service) observe(sess *Session, op string, err error) error {
	if err == nil {
		return nil
	}
	log := s.logFor(sess)
	switch domain.KindOf(err) {
	case domain.KindAuth:
		if sess != nil {
			s.sessions.Drop(sess.Auth().ID)
			log.Warn().Str("op", op).Msg("credencial rechazada, sesión cerrada")
		}
	case domain.KindTransient:
		log.Warn().Err(err).Str("op", op).Msg("backend no disponible")
	case domain.KindInternal:
		log.Error().Err(err).Str("op", op).Msg("error inesperado del backend")
	}
	return err
}

// logFor sublogger con los campos de la sesión; sin sesión, el logger del servicio.
func (s *Service) logFor(sess *Session) *logger.Logger {
	if sess == nil {
		return s.log
	}
	a := sess.Auth()
	return s.log.Terminal(a.ID, a.Principal.TenantID, a.Principal.UserID, string(a.Principal.Role))
}

func (s *Service) publish(sess *Session, typ, id string) {
	s.events.Publish(Event{Type: typ, TenantID: sess.Principal().TenantID, ID: id, At: s.now()})
}

func require(sess *Session, perm access.Permission) (access.Principal, error) {
	p := sess.Principal()
	if err := access.Require(p.Role, perm); err != nil {
		return p, err
	}
	return p, nil
}

// Me refresca los datos del negocio de la sesión.
func (s *Service) Me(ctx context.Context, sess *Session) (AuthSession, error) {
	auth := sess.Auth()
	tenant, err := s.backend.Tenant(ctx, auth.Principal)
	if err != nil {
		return auth, s.observe(sess, "tenant", err)
	}
	if tenant != nil {
		sess.mu.Lock()
		sess.auth.Tenant = *tenant
		auth = sess.auth
		sess.mu.Unlock()
	}
	return auth, nil
}

// Items

func (s *Service) ListItems(ctx context.Context, sess *Session, q dto.ItemQuery) ([]entity.Item, error) {
	p, err := require(sess, access.PermViewItems)
	if err != nil {
		return nil, err
	}
	items, err := s.backend.ListItems(ctx, p, q)
	return items, s.observe(sess, "list_items", err)
}

func (s *Service) GetItem(ctx context.Context, sess *Session, id string) (*entity.Item, error) {
	p, err := require(sess, access.PermViewItems)
	if err != nil {
		return nil, err
	}
	item, err := s.backend.GetItem(ctx, p, id)
	return item, s.observe(sess, "get_item", err)
}

func (s *Service) CreateItem(ctx context.Context, sess *Session, in dto.CreateItemRequest) (*entity.Item, error) {
	p, err := require(sess, access.PermManageItems)
	if err != nil {
		return nil, err
	}
	item, err := s.backend.CreateItem(ctx, p, in)
	if err != nil {
		return nil, s.observe(sess, "create_item", err)
	}
	s.publish(sess, EventItemChanged, item.ID)
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, sess *Session, id string, in dto.UpdateItemRequest) (*entity.Item, error) {
	p, err := require(sess, access.PermManageItems)
	if err != nil {
		return nil, err
	}
	item, err := s.backend.UpdateItem(ctx, p, id, in)
	if err != nil {
		return nil, s.observe(sess, "update_item", err)
	}
	s.publish(sess, EventItemChanged, item.ID)
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, sess *Session, id string) error {
	p, err := require(sess, access.PermManageItems)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteItem(ctx, p, id); err != nil {
		return s.observe(sess, "delete_item", err)
	}
	s.publish(sess, EventItemChanged, id)
	return nil
}

// Historial de ventas

func (s *Service) GetTransaction(ctx context.Context, sess *Session, id string) (*entity.Transaction, error) {
	p, err := require(sess, access.PermViewHistory)
	if err != nil {
		return nil, err
	}
	t, err := s.backend.GetTransaction(ctx, p, id)
	return t, s.observe(sess, "get_transaction", err)
}

func (s *Service) ListTransactions(ctx context.Context, sess *Session, q dto.TransactionQuery) ([]entity.Transaction, int, error) {
	p, err := require(sess, access.PermViewHistory)
	if err != nil {
		return nil, 0, err
	}
	txs, total, err := s.backend.ListTransactions(ctx, p, q)
	return txs, total, s.observe(sess, "list_transactions", err)
}

// Receipt comprobante de una venta con la cabecera del negocio de la sesión.
func (s *Service) Receipt(ctx context.Context, sess *Session, id string) (*entity.Transaction, entity.Tenant, error) {
	t, err := s.GetTransaction(ctx, sess, id)
	if err != nil {
		return nil, entity.Tenant{}, err
	}
	return t, sess.Auth().Tenant, nil
}

// ReceiptPDF comprobante imprimible y su nombre de archivo.
func (s *Service) ReceiptPDF(ctx context.Context, sess *Session, id string) ([]byte, string, error) {
	if s.receipts == nil {
		return nil, "", errors.New("receipt renderer no configurado")
	}
	t, tenant, err := s.Receipt(ctx, sess, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.receipts.Render(t, &tenant)
	if err != nil {
		return nil, "", fmt.Errorf("render receipt %s: %w", t.Number, err)
	}
	return pdf, ReceiptFilename(t), nil
}

// Stock

func (s *Service) StockAlerts(ctx context.Context, sess *Session) ([]stock.Alert, error) {
	p, err := require(sess, access.PermManageStock)
	if err != nil {
		return nil, err
	}
	alerts, err := s.backend.StockAlerts(ctx, p)
	return alerts, s.observe(sess, "stock_alerts", err)
}

func (s *Service) StockSummary(ctx context.Context, sess *Session, lowOnly bool) (stock.Summary, []entity.Item, error) {
	p, err := require(sess, access.PermManageStock)
	if err != nil {
		return stock.Summary{}, nil, err
	}
	summary, items, err := s.backend.StockSummary(ctx, p, lowOnly)
	return summary, items, s.observe(sess, "stock_summary", err)
}

// Reportes

func (s *Service) ReportSummary(ctx context.Context, sess *Session, start, end string) (*report.Report, error) {
	p, err := require(sess, access.PermViewReports)
	if err != nil {
		return nil, err
	}
	r, err := s.backend.ReportSummary(ctx, p, start, end)
	return r, s.observe(sess, "report_summary", err)
}

func (s *Service) DailyReport(ctx context.Context, sess *Session, date string) (*report.DayReport, error) {
	p, err := require(sess, access.PermViewReports)
	if err != nil {
		return nil, err
	}
	r, err := s.backend.DailyReport(ctx, p, date)
	return r, s.observe(sess, "daily_report", err)
}

func (s *Service) Dashboard(ctx context.Context, sess *Session) (*report.Dashboard, error) {
	p, err := require(sess, access.PermViewDashboard)
	if err != nil {
		return nil, err
	}
	d, err := s.backend.Dashboard(ctx, p)
	return d, s.observe(sess, "dashboard", err)
}

// ExportFile documento exportado listo para descargar.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export codifica el documento del periodo en JSON o CSV; ambos salen del mismo documento.
func (s *Service) Export(ctx context.Context, sess *Session, start, end, format string) (ExportFile, error) {
	p, err := require(sess, access.PermViewReports)
	if err != nil {
		return ExportFile{}, err
	}
	if format == "" {
		format = report.FormatJSON
	}
	if format != report.FormatJSON && format != report.FormatCSV {
		return ExportFile{}, domain.Invalid("Format ekspor tidak valid: %s", format)
	}
	doc, err := s.backend.ExportReport(ctx, p, start, end)
	if err != nil {
		return ExportFile{}, s.observe(sess, "export_report", err)
	}

	var buf bytes.Buffer
	out := ExportFile{Filename: doc.Filename(format)}
	switch format {
	case report.FormatCSV:
		out.ContentType = "text/csv; charset=utf-8"
		err = report.EncodeCSV(&buf, doc)
	default:
		out.ContentType = "application/json"
		err = report.EncodeJSON(&buf, doc)
	}
	if err != nil {
		return ExportFile{}, fmt.Errorf("encode export: %w", err)
	}
	out.Body = buf.Bytes()
	return out, nil
}
