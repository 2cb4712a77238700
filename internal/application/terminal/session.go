package terminal

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/cart"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Phase fase del checkout de la sesión.
type Phase string

const (
	PhaseDraft          Phase = "draft"
	PhasePendingPayment Phase = "pending_payment"
)

// AuthSession identidad de la sesión. Es un valor: se copia, nunca se comparte mutable.
type AuthSession struct {
	ID        string
	Principal access.Principal
	Tenant    entity.Tenant
	ExpiresAt time.Time
}

// Expired indica si la sesión ya no es válida en t.
func (a AuthSession) Expired(t time.Time) bool {
	return !a.ExpiresAt.IsZero() && !t.Before(a.ExpiresAt)
}

// CartView instantánea del carrito y del checkout para la capa de presentación.
type CartView struct {
	Lines        []cart.Line
	Total        money.Amount
	LineCount    int
	ItemCount    int
	Phase        Phase
	ClientRef    string
	Paying       bool
	QuickAmounts []money.Amount
}

// Session estado de un login: identidad, carrito y checkout.
// Todos los métodos se serializan con mu; las llamadas de red ocurren fuera del lock
// y se marcan con banderas de operación en curso.
type Session struct {
	mu sync.Mutex

	auth        AuthSession
	cart        *cart.Cart
	phase       Phase
	clientRef   string
	paying      bool
	voiding     map[string]bool
	adjusting   map[string]bool
	lastReceipt *entity.Transaction
}

func newSession(auth AuthSession) *Session {
	return &Session{
		auth:      auth,
		cart:      cart.New(),
		phase:     PhaseDraft,
		voiding:   make(map[string]bool),
		adjusting: make(map[string]bool),
	}
}

// Auth identidad de la sesión.
func (s *Session) Auth() AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// Principal atajo al principal autenticado.
func (s *Session) Principal() access.Principal {
	return s.Auth().Principal
}

// Cart instantánea del carrito.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// LastReceipt última venta confirmada en esta sesión (nil si no hay).
func (s *Session) LastReceipt() *entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReceipt == nil {
		return nil
	}
	t := *s.lastReceipt
	return &t
}

func (s *Session) viewLocked() CartView {
	total := s.cart.Total()
	return CartView{
		Lines:        s.cart.Lines(),
		Total:        total,
		LineCount:    s.cart.LineCount(),
		ItemCount:    s.cart.ItemCount(),
		Phase:        s.phase,
		ClientRef:    s.clientRef,
		Paying:       s.paying,
		QuickAmounts: money.QuickAmounts(total),
	}
}

// mutate aplica un cambio al carrito. Rechaza cambios mientras el pago está pendiente.
// Un carrito distinto es otra venta: la referencia de deduplicación se descarta solo si las líneas cambiaron.
func (s *Session) mutate(fn func(c *cart.Cart) error) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhasePendingPayment {
		return s.viewLocked(), domain.ErrCartLocked
	}
	before := s.cart.Lines()
	err := fn(s.cart)
	if !slices.Equal(before, s.cart.Lines()) {
		s.clientRef = ""
	}
	return s.viewLocked(), err
}

// AddItem agrega el ítem (o suma 1) con el precio vigente.
func (s *Session) AddItem(item *entity.Item) (CartView, error) {
	return s.mutate(func(c *cart.Cart) error { return c.Add(item) })
}

// RemoveItem quita la línea.
func (s *Session) RemoveItem(itemID string) (CartView, error) {
	return s.mutate(func(c *cart.Cart) error {
		c.Remove(itemID)
		return nil
	})
}

// SetQty fija la cantidad; ≤ 0 quita la línea.
func (s *Session) SetQty(itemID string, qty int) (CartView, error) {
	return s.mutate(func(c *cart.Cart) error { return c.SetQty(itemID, qty) })
}

// Increment suma 1.
func (s *Session) Increment(itemID string) (CartView, error) {
	return s.mutate(func(c *cart.Cart) error { return c.Increment(itemID) })
}

// Decrement resta 1; en 1 quita la línea.
func (s *Session) Decrement(itemID string) (CartView, error) {
	return s.mutate(func(c *cart.Cart) error {
		c.Decrement(itemID)
		return nil
	})
}

// ClearCart vacía el carrito.
func (s *Session) ClearCart() (CartView, error) {
	return s.mutate(func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// BeginCheckout Draft → PendingPayment. Requiere carrito no vacío.
// La referencia de deduplicación se conserva si el carrito no cambió desde el último intento.
func (s *Session) BeginCheckout() (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.IsEmpty() {
		return s.viewLocked(), domain.ErrCartEmpty
	}
	if s.phase == PhaseDraft {
		s.phase = PhasePendingPayment
	}
	if s.clientRef == "" {
		s.clientRef = uuid.New().String()
	}
	return s.viewLocked(), nil
}

// CancelCheckout PendingPayment → Draft sin efectos; el carrito queda intacto.
func (s *Session) CancelCheckout() (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paying {
		return s.viewLocked(), domain.ErrInFlight
	}
	s.phase = PhaseDraft
	return s.viewLocked(), nil
}

var errNotPending = &domain.Error{Kind: domain.KindValidation, Code: "CHECKOUT_NOT_STARTED", Msg: "Buka pembayaran terlebih dahulu", Err: domain.ErrInvalidInput}

// startPayment toma la bandera de pago y devuelve las líneas y la referencia a enviar.
func (s *Session) startPayment() ([]cart.Line, money.Amount, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePendingPayment {
		return nil, 0, "", errNotPending
	}
	if s.paying {
		return nil, 0, "", domain.ErrInFlight
	}
	if s.cart.IsEmpty() {
		return nil, 0, "", domain.ErrCartEmpty
	}
	s.paying = true
	return s.cart.Lines(), s.cart.Total(), s.clientRef, nil
}

// finishPayment libera la bandera. Solo una venta confirmada vacía el carrito.
func (s *Session) finishPayment(t *entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paying = false
	if t == nil {
		return
	}
	s.cart.Clear()
	s.phase = PhaseDraft
	s.clientRef = ""
	receipt := *t
	s.lastReceipt = &receipt
}

// acquire marca key como en curso en el conjunto; false si ya lo estaba.
func (s *Session) acquire(set map[string]bool, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set[key] {
		return false
	}
	set[key] = true
	return true
}

func (s *Session) release(set map[string]bool, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(set, key)
}
