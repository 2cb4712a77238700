package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/aikasir-api/internal/interfaces/http"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerEmail   = "pemilik@warungkopi.id"
	cashierEmail = "kasir@warungkopi.id"
	testPassword = "rahasia123"
)

var testTokens = terminal.TokenConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "aikasir-test", ExpMinutes: 60}

type testAPI struct {
	app          *fiber.App
	svc          *terminal.Service
	local        *ledger.Backend
	ownerToken   string
	cashierToken string
}

// newTestAPI API completa sobre el ledger en memoria, con un pemilik y un kasir logueados.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	local := ledger.New(store.Repositories(), ledger.Options{Location: time.UTC, DefaultThreshold: 10}, logger.Nop())

	tenant, owner, err := local.Auth.Bootstrap(ctx, entity.Tenant{Name: "Warung Kopi", Address: "Jl. Merdeka 1"}, "Bu Sari", ownerEmail, testPassword)
	require.NoError(t, err)
	ownerP := access.Principal{UserID: owner.ID, Name: owner.Name, TenantID: tenant.ID, Role: access.Owner}
	_, err = local.Auth.RegisterUser(ctx, ownerP, "Andi", cashierEmail, testPassword, access.Cashier)
	require.NoError(t, err)

	svc := terminal.NewService(local, terminal.NewRegistry(), testTokens, nil, nil, logger.Nop())
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{Service: svc})

	api := &testAPI{app: app, svc: svc, local: local}
	api.ownerToken = api.login(t, ownerEmail)
	api.cashierToken = api.login(t, cashierEmail)
	return api
}

func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// do lanza la petición con el token (si hay) y un cuerpo JSON opcional.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

// buildProtectedApp app mínima con AuthMiddleware + RequireCapability y un handler dummy.
func buildProtectedApp(api *testAPI, perm access.Permission) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/protected",
		apphttp.AuthMiddleware(api.svc),
		apphttp.RequireCapability(perm),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c), "tenant_id": apphttp.GetTenantID(c)})
		},
	)
	return app
}

func doProtected(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermPOS), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermPOS), "Token "+api.ownerToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_TokenFirmaIncorrecta_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermPOS), "Bearer eyJhbGciOiJIUzI1NiJ9.e30.firma")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

// Un token bien firmado de una sesión cerrada ya no sirve.
func TestAuthMiddleware_SesionCerrada_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/v1/auth/logout", api.cashierToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doProtected(t, buildProtectedApp(api, access.PermPOS), "Bearer "+api.cashierToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireCapability
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireCapability_PemilikAccedeATodo(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermManageStock), "Bearer "+api.ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, string(access.Owner), body["role"])
	assert.NotEmpty(t, body["tenant_id"])
}

func TestRequireCapability_KasirAccedeAPOS(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermPOS), "Bearer "+api.cashierToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireCapability_KasirBloqueadoEnStock(t *testing.T) {
	api := newTestAPI(t)
	resp := doProtected(t, buildProtectedApp(api, access.PermManageStock), "Bearer "+api.cashierToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}
