// Package access define los roles y el único chequeo de capacidades del sistema.
package access

import (
	"fmt"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// Role rol cerrado de un usuario dentro de su tenant.
type Role string

const (
	Owner   Role = entity.RoleOwner
	Cashier Role = entity.RoleCashier
)

// Permission capacidad protegida.
type Permission string

const (
	PermPOS           Permission = "pos"
	PermViewItems     Permission = "view_items"
	PermManageItems   Permission = "manage_items"
	PermViewHistory   Permission = "view_history"
	PermVoid          Permission = "void"
	PermManageStock   Permission = "manage_stock"
	PermViewReports   Permission = "view_reports"
	PermViewDashboard Permission = "view_dashboard"
	PermManageUsers   Permission = "manage_users"
	PermSettings      Permission = "settings"
)

var cashierPerms = map[Permission]bool{
	PermPOS:           true,
	PermViewItems:     true,
	PermViewHistory:   true,
	PermViewDashboard: true,
}

// ParseRole valida el rol recibido del backend o del token.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case Owner, Cashier:
		return Role(s), nil
	}
	return "", fmt.Errorf("rol desconocido %q: %w", s, domain.ErrUnauthorized)
}

// Can responde si el rol tiene la capacidad. El pemilik tiene todas.
func Can(r Role, p Permission) bool {
	switch r {
	case Owner:
		return true
	case Cashier:
		return cashierPerms[p]
	default:
		return false
	}
}

// Require devuelve ErrForbidden si el rol no tiene la capacidad.
func Require(r Role, p Permission) error {
	if !Can(r, p) {
		return fmt.Errorf("%s: %w", p, domain.ErrForbidden)
	}
	return nil
}

// Principal identidad autenticada que origina una operación.
// Token es la credencial del sistema de registro (vacía con el ledger local).
type Principal struct {
	UserID   string
	Name     string
	Email    string
	TenantID string
	Role     Role
	Token    string
}

// Can atajo sobre el rol del principal.
func (p Principal) Can(perm Permission) bool { return Can(p.Role, perm) }
