package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository            = (*ItemRepo)(nil)
	_ repository.TransactionRepository     = (*TransactionRepo)(nil)
	_ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.TenantRepository          = (*TenantRepo)(nil)
)

// ItemRepo ítems en memoria.
type ItemRepo struct {
	s  *Store
	tx bool
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.items[item.ID] = *item
	return nil
}

// Update conserva el stock guardado; solo UpdateStock lo cambia.
func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	defer r.s.lock(r.tx)()
	cur, ok := r.s.items[item.ID]
	if !ok || cur.TenantID != item.TenantID {
		return domain.ErrNotFound
	}
	next := *item
	next.Stock = cur.Stock
	next.CreatedAt = cur.CreatedAt
	r.s.items[item.ID] = next
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, nil
	}
	return &it, nil
}

// GetForUpdate igual que GetByID: el Store ya serializa las transacciones.
func (r *ItemRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Item, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *ItemRepo) List(_ context.Context, tenantID string, f repository.ItemFilter) ([]entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	out := make([]entity.Item, 0)
	for _, it := range r.s.items {
		if it.TenantID != tenantID {
			continue
		}
		if f.ActiveOnly && !it.IsActive {
			continue
		}
		if f.TrackedOnly && !it.TrackStock {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b entity.Item) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}

func (r *ItemRepo) UpdateStock(_ context.Context, tenantID, id string, stock int, at time.Time) error {
	defer r.s.lock(r.tx)()
	it, ok := r.s.items[id]
	if !ok || it.TenantID != tenantID {
		return domain.ErrNotFound
	}
	it.Stock = stock
	it.UpdatedAt = at
	r.s.items[id] = it
	return nil
}

// TransactionRepo ventas en memoria.
type TransactionRepo struct {
	s  *Store
	tx bool
}

// Create rechaza un client_ref repetido en el tenant, igual que el índice único de PostgreSQL.
func (r *TransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.transactions[t.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.transactions {
		if existing.TenantID != t.TenantID {
			continue
		}
		if existing.Number == t.Number || (t.ClientRef != "" && existing.ClientRef == t.ClientRef) {
			return domain.ErrDuplicate
		}
	}
	r.s.transactions[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	out := cloneTransaction(t)
	return &out, nil
}

func (r *TransactionRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *TransactionRepo) GetByClientRef(_ context.Context, tenantID, clientRef string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.transactions {
		if t.TenantID == tenantID && clientRef != "" && t.ClientRef == clientRef {
			out := cloneTransaction(t)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *TransactionRepo) NextSequence(_ context.Context, tenantID, day string) (int, error) {
	defer r.s.lock(r.tx)()
	key := tenantID + "|" + day
	r.s.counters[key]++
	return r.s.counters[key], nil
}

func (r *TransactionRepo) MarkVoided(_ context.Context, t *entity.Transaction) error {
	defer r.s.lock(r.tx)()
	cur, ok := r.s.transactions[t.ID]
	if !ok || cur.TenantID != t.TenantID {
		return domain.ErrNotFound
	}
	cur.Status = t.Status
	cur.VoidReason = t.VoidReason
	cur.VoidedBy = t.VoidedBy
	cur.VoidedByName = t.VoidedByName
	cur.VoidedAt = t.VoidedAt
	r.s.transactions[t.ID] = cloneTransaction(cur)
	return nil
}

func (r *TransactionRepo) List(_ context.Context, tenantID string, f repository.TransactionFilter) ([]entity.Transaction, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := make([]entity.Transaction, 0)
	for _, t := range r.s.transactions {
		if t.TenantID != tenantID {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.Until != nil && !t.CreatedAt.Before(*f.Until) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		matched = append(matched, cloneTransaction(t))
	}
	slices.SortFunc(matched, func(a, b entity.Transaction) int {
		return cmp.Or(
			b.CreatedAt.Compare(a.CreatedAt),
			cmp.Compare(b.Number, a.Number),
		)
	})
	total := len(matched)
	if f.Limit <= 0 {
		return matched, total, nil
	}
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	return matched[start:end], total, nil
}

// StockAdjustmentRepo ledger en memoria; el slice está en orden de creación.
type StockAdjustmentRepo struct {
	s  *Store
	tx bool
}

func (r *StockAdjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	defer r.s.lock(r.tx)()
	r.s.adjustments = append(r.s.adjustments, *adj)
	return nil
}

func (r *StockAdjustmentRepo) ListByItem(_ context.Context, tenantID, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.StockAdjustment, 0)
	skipped := 0
	for i := len(r.s.adjustments) - 1; i >= 0; i-- {
		a := r.s.adjustments[i]
		if a.TenantID != tenantID || a.ItemID != itemID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *StockAdjustmentRepo) ListByTransaction(_ context.Context, tenantID, transactionID, adjType string) ([]entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.StockAdjustment, 0)
	for _, a := range r.s.adjustments {
		if a.TenantID == tenantID && a.TransactionID == transactionID && a.Type == adjType {
			out = append(out, a)
		}
	}
	return out, nil
}

// UserRepo usuarios en memoria. El email es único en todo el store.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListByTenant(_ context.Context, tenantID string) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b entity.User) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.users[user.ID] = *user
	return nil
}

// TenantRepo negocios en memoria.
type TenantRepo struct{ s *Store }

func (r *TenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.tenants[t.ID] = *t
	return nil
}

func (r *TenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TenantRepo) Update(_ context.Context, t *entity.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.tenants[t.ID] = *t
	return nil
}
