package entity

import "time"

// Roles válidos para User.
const (
	RoleOwner   = "pemilik"
	RoleCashier = "kasir"
)

// User representa un usuario del sistema (pertenece a un Tenant).
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // pemilik, kasir
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tenant representa el negocio (toko) dueño de los datos.
type Tenant struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
}
