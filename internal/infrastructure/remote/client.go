// Package remote implementa terminal.Backend contra una API AIKasir alojada (/api/v1).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

const (
	apiPrefix       = "/api/v1"
	maxResponseBody = 8 << 20
	defaultTimeout  = 15 * time.Second
)

// Client cliente HTTP del sistema de registro remoto.
// La credencial viaja en cada llamada dentro del Principal (Principal.Token).
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
	log        *logger.Logger
}

// New construye el cliente. loc es la zona horaria de la tienda, para resolver periodos
// igual que el servidor. timeout ≤ 0 usa 15 s.
func New(baseURL string, timeout time.Duration, loc *time.Location, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// statusKind clasifica la respuesta de error. 5xx es Transient: la operación pudo haber ocurrido.
func statusKind(status int) domain.Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.KindValidation
	case status == http.StatusUnauthorized:
		return domain.KindAuth
	case status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusConflict:
		return domain.KindConflict
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return domain.KindTransient
	default:
		return domain.KindInternal
	}
}

// decodeError reconstruye el error de dominio a partir del cuerpo dto.ErrorResponse.
func decodeError(status int, body []byte) error {
	kind := statusKind(status)
	var er dto.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Code == "" {
		er.Code = "HTTP_" + fmt.Sprint(status)
	}
	cause := fmt.Errorf("remote: HTTP %d %s", status, er.Code)
	switch {
	case kind == domain.KindTransient:
		return domain.Transient(cause)
	case er.Code == domain.ErrAlreadyVoided.Code:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrAlreadyVoided}
	case er.Code == domain.ErrInsufficientStock.Code:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrInsufficientStock}
	case kind == domain.KindAuth && er.Code == domain.ErrInvalidCredentials.Code:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrInvalidCredentials}
	case kind == domain.KindAuth:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrUnauthorized}
	case kind == domain.KindForbidden:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrForbidden}
	case kind == domain.KindNotFound:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrNotFound}
	case kind == domain.KindValidation:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: domain.ErrInvalidInput}
	default:
		return &domain.Error{Kind: kind, Code: er.Code, Msg: er.Message, Err: cause}
	}
}

// do envía la petición y decodifica la respuesta 2xx en out (si no es nil).
// Fallos de red, timeouts y 5xx salen como Transient.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("remote: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Transient(fmt.Errorf("remote: %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Transient(fmt.Errorf("remote: leer respuesta %s %s: %w", method, path, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := decodeError(resp.StatusCode, raw)
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Str("code", domain.CodeOf(err)).Msg("remote: respuesta de error")
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remote: decodificar respuesta %s %s: %w", method, path, err)
	}
	return nil
}

func seg(id string) string { return "/" + url.PathEscape(id) }
