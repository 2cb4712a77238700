package terminal

import (
	"sync"
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// Registry sesiones activas por ID. Lo crea la raíz de composición; una sesión por login.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry crea un registro vacío.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.auth.ID] = s
}

// Get sesión por ID; nil si no existe.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Drop elimina la sesión (logout o credencial rechazada por el backend).
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len número de sesiones activas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep elimina las sesiones expiradas en now y devuelve cuántas quitó.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.Auth().Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// DropUser cierra todas las sesiones del usuario y devuelve cuántas quitó.
func (r *Registry) DropUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.Principal().UserID == userID {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// SetTenant refresca el negocio en las sesiones abiertas de ese tenant.
func (r *Registry) SetTenant(t entity.Tenant) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.mu.Lock()
		if s.auth.Principal.TenantID == t.ID {
			s.auth.Tenant = t
		}
		s.mu.Unlock()
	}
}
