package dto

import (
	"time"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// CreateUserRequest alta de un empleado. Sin rol se crea como kasir.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=pemilik kasir"`
}

// UpdateUserRequest cambios sobre otro empleado del negocio.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=pemilik kasir"`
	IsActive *bool   `json:"is_active"`
}

// ChangePasswordRequest cambio de password del usuario de la sesión.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// UpdateSettingsRequest perfil del negocio que sale en los comprobantes.
type UpdateSettingsRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
}

// StaffResponse empleado del negocio; nunca incluye el hash.
type StaffResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// StaffListResponse listado de empleados.
type StaffListResponse struct {
	Users []StaffResponse `json:"users"`
	Total int             `json:"total"`
}

func ToStaffResponse(u *entity.User) StaffResponse {
	return StaffResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func ToStaffList(users []entity.User) StaffListResponse {
	out := StaffListResponse{Users: make([]StaffResponse, 0, len(users)), Total: len(users)}
	for i := range users {
		out.Users = append(out.Users, ToStaffResponse(&users[i]))
	}
	return out
}

// FromStaffResponse reconstruye el empleado recibido del servidor remoto.
func FromStaffResponse(r StaffResponse, tenantID string) entity.User {
	return entity.User{
		ID:        r.ID,
		TenantID:  tenantID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

// ToTenantResponse perfil del negocio.
func ToTenantResponse(t entity.Tenant) TenantResponse {
	return TenantResponse{ID: t.ID, Name: t.Name, Address: t.Address, Phone: t.Phone}
}
