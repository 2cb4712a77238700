package dto

import (
	"github.com/jhoicas/aikasir-api/internal/domain/access"
)

// LoginRequest entrada de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse usuario autenticado.
type UserResponse struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenant_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// TenantResponse negocio del usuario.
type TenantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// LoginResponse token de sesión más usuario y negocio.
type LoginResponse struct {
	Token  string         `json:"token"`
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
}

// MeResponse sesión actual.
type MeResponse struct {
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
}

var allPermissions = []access.Permission{
	access.PermPOS, access.PermViewItems, access.PermManageItems, access.PermViewHistory,
	access.PermVoid, access.PermManageStock, access.PermViewReports, access.PermViewDashboard,
	access.PermManageUsers, access.PermSettings,
}

// ToUserResponse mapea el principal con sus capacidades, para que la UI oculte lo que no puede usar.
func ToUserResponse(p access.Principal) UserResponse {
	perms := make([]string, 0, len(allPermissions))
	for _, perm := range allPermissions {
		if p.Can(perm) {
			perms = append(perms, string(perm))
		}
	}
	return UserResponse{
		ID:          p.UserID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Email:       p.Email,
		Role:        string(p.Role),
		Permissions: perms,
	}
}
