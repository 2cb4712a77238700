// Package memory implementa los repositorios del ledger local sobre mapas en memoria.
// Sirve para desarrollo y pruebas; mismas reglas que el adaptador PostgreSQL.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jhoicas/aikasir-api/internal/application/inventory"
	"github.com/jhoicas/aikasir-api/internal/application/ledger"
	"github.com/jhoicas/aikasir-api/internal/application/sales"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ sales.SalesTxRunner = (*Store)(nil)

// Store estado completo del ledger. mu protege los datos; txMu serializa las transacciones
// y también las escrituras sueltas, para que un rollback no pise cambios ajenos.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	tenants      map[string]entity.Tenant
	users        map[string]entity.User
	items        map[string]entity.Item
	transactions map[string]entity.Transaction
	adjustments  []entity.StockAdjustment
	counters     map[string]int
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		tenants:      make(map[string]entity.Tenant),
		users:        make(map[string]entity.User),
		items:        make(map[string]entity.Item),
		transactions: make(map[string]entity.Transaction),
		adjustments:  make([]entity.StockAdjustment, 0, 64),
		counters:     make(map[string]int),
	}
}

// Items repositorio de ítems.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Transactions repositorio de ventas.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Adjustments repositorio del ledger de stock.
func (s *Store) Adjustments() *StockAdjustmentRepo { return &StockAdjustmentRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Tenants repositorio de negocios.
func (s *Store) Tenants() *TenantRepo { return &TenantRepo{s: s} }

// Repositories todos los repositorios del store, listos para ledger.New.
func (s *Store) Repositories() ledger.Repositories {
	return ledger.Repositories{
		Tx:           s,
		Items:        s.Items(),
		Transactions: s.Transactions(),
		Adjustments:  s.Adjustments(),
		Users:        s.Users(),
		Tenants:      s.Tenants(),
	}
}

type snapshot struct {
	items        map[string]entity.Item
	transactions map[string]entity.Transaction
	adjustments  int
	counters     map[string]int
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		items:        make(map[string]entity.Item, len(s.items)),
		transactions: make(map[string]entity.Transaction, len(s.transactions)),
		adjustments:  len(s.adjustments),
		counters:     make(map[string]int, len(s.counters)),
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.transactions {
		snap.transactions[k] = cloneTransaction(v)
	}
	for k, v := range s.counters {
		snap.counters[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.transactions = snap.transactions
	s.adjustments = s.adjustments[:snap.adjustments]
	s.counters = snap.counters
}

// lock toma mu para escribir; fuera de una transacción también toma txMu.
func (s *Store) lock(inTx bool) (unlock func()) {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// inTx serializa la transacción y deshace todos sus cambios si fn falla.
func (s *Store) inTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Run ejecuta fn con repos de ítems y ledger; todo o nada.
func (s *Store) Run(_ context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
) error) error {
	return s.inTx(func() error {
		return fn(&ItemRepo{s: s, tx: true}, &StockAdjustmentRepo{s: s, tx: true})
	})
}

// RunSales ejecuta fn con repos de inventario y ventas; todo o nada.
func (s *Store) RunSales(_ context.Context, fn func(
	itemRepo repository.ItemRepository,
	ledgerRepo repository.StockAdjustmentRepository,
	txRepo repository.TransactionRepository,
) error) error {
	return s.inTx(func() error {
		return fn(&ItemRepo{s: s, tx: true}, &StockAdjustmentRepo{s: s, tx: true}, &TransactionRepo{s: s, tx: true})
	})
}

func cloneTransaction(t entity.Transaction) entity.Transaction {
	t.Lines = slices.Clone(t.Lines)
	if t.VoidedAt != nil {
		at := *t.VoidedAt
		t.VoidedAt = &at
	}
	return t
}
