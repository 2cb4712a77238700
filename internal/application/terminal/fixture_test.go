package terminal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/infrastructure/memory"
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

// spyBackend envuelve el backend real para inyectar fallos y contar llamadas.
type spyBackend struct {
	terminal.Backend

	mu         sync.Mutex
	calls      map[string]int
	createHook func(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error)
	voidHook   func(ctx context.Context, p access.Principal, id, reason string) (*entity.Transaction, error)
	adjustHook func(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error)
}

func (b *spyBackend) count(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
}

func (b *spyBackend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *spyBackend) CreateTransaction(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	b.count("create_transaction")
	if b.createHook != nil {
		return b.createHook(ctx, p, in)
	}
	return b.Backend.CreateTransaction(ctx, p, in)
}

func (b *spyBackend) VoidTransaction(ctx context.Context, p access.Principal, id, reason string) (*entity.Transaction, error) {
	b.count("void_transaction")
	if b.voidHook != nil {
		return b.voidHook(ctx, p, id, reason)
	}
	return b.Backend.VoidTransaction(ctx, p, id, reason)
}

func (b *spyBackend) AdjustStock(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
	b.count("adjust_stock")
	if b.adjustHook != nil {
		return b.adjustHook(ctx, p, itemID, in)
	}
	return b.Backend.AdjustStock(ctx, p, itemID, in)
}

func (b *spyBackend) StockHistory(ctx context.Context, p access.Principal, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	b.count("stock_history")
	return b.Backend.StockHistory(ctx, p, itemID, limit, offset)
}

type recorder struct {
	mu     sync.Mutex
	events []terminal.Event
}

func (r *recorder) Publish(e terminal.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	svc     *terminal.Service
	reg     *terminal.Registry
	backend *spyBackend
	local   *ledger.Backend
	store   *memory.Store
	events  *recorder
	owner   *terminal.Session
	cashier *terminal.Session
	token   string
}

// newHarness negocio con un pemilik y un kasir, ambos con sesión abierta.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	local := ledger.New(store.Repositories(), ledger.Options{Location: time.UTC, DefaultThreshold: 10}, logger.Nop())

	tenant, owner, err := local.Auth.Bootstrap(ctx, entity.Tenant{Name: "Warung Kopi", Address: "Jl. Merdeka 1"}, "Bu Sari", ownerEmail, testPassword)
	require.NoError(t, err)
	ownerP := access.Principal{UserID: owner.ID, Name: owner.Name, TenantID: tenant.ID, Role: access.Owner}
	_, err = local.Auth.RegisterUser(ctx, ownerP, "Andi", cashierEmail, testPassword, access.Cashier)
	require.NoError(t, err)

	spy := &spyBackend{Backend: local, calls: make(map[string]int)}
	events := &recorder{}
	reg := terminal.NewRegistry()
	svc := terminal.NewService(spy, reg, testTokens, events, nil, logger.Nop())

	token, ownerSess, err := svc.Login(ctx, dto.LoginRequest{Email: ownerEmail, Password: testPassword})
	require.NoError(t, err)
	_, cashierSess, err := svc.Login(ctx, dto.LoginRequest{Email: cashierEmail, Password: testPassword})
	require.NoError(t, err)

	return &harness{svc: svc, reg: reg, backend: spy, local: local, store: store, events: events, owner: ownerSess, cashier: cashierSess, token: token}
}

func (h *harness) item(t *testing.T, name string, price money.Amount, track bool, stock, threshold int) *entity.Item {
	t.Helper()
	it, err := h.svc.CreateItem(context.Background(), h.owner, dto.CreateItemRequest{
		Name:              name,
		Price:             price,
		TrackStock:        track,
		Stock:             stock,
		LowStockThreshold: &threshold,
	})
	require.NoError(t, err)
	return it
}

func (h *harness) stockOf(t *testing.T, id string) int {
	t.Helper()
	it, err := h.svc.GetItem(context.Background(), h.owner, id)
	require.NoError(t, err)
	return it.Stock
}

// kopi Kopi: 15.000, stock 10, umbral 5.
func (h *harness) kopi(t *testing.T) *entity.Item {
	return h.item(t, "Kopi", 15000, true, 10, 5)
}
