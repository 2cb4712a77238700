package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/repository"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

var (
	errInactive      = &domain.Error{Kind: domain.KindAuth, Code: "ACCOUNT_INACTIVE", Msg: "Akun tidak aktif", Err: domain.ErrUnauthorized}
	errSelfEdit      = &domain.Error{Kind: domain.KindValidation, Code: "SELF_EDIT", Msg: "Gunakan halaman profil untuk mengubah akun sendiri", Err: domain.ErrInvalidInput}
	errWrongPassword = &domain.Error{Kind: domain.KindValidation, Code: "WRONG_PASSWORD", Msg: "Password lama salah", Err: domain.ErrInvalidInput}
	errStaffNotFound = &domain.Error{Kind: domain.KindNotFound, Code: "NOT_FOUND", Msg: "Karyawan tidak ditemukan", Err: domain.ErrNotFound}
)

// AuthUseCase casos de uso de autenticación del ledger local: login y alta de usuarios.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	log        *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tenantRepo repository.TenantRepository, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tenantRepo: tenantRepo, log: log}
}

// Login verifica email/password y retorna el principal y su negocio.
// Usuario inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (access.Principal, *entity.Tenant, error) {
	email := normalizeEmail(in.Email)
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return access.Principal{}, nil, err
	}
	if user == nil {
		return access.Principal{}, nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("tenant_id", user.TenantID).Str("user_id", user.ID).Msg("login con password incorrecto")
		return access.Principal{}, nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return access.Principal{}, nil, errInactive
	}
	role, err := access.ParseRole(user.Role)
	if err != nil {
		return access.Principal{}, nil, err
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, user.TenantID)
	if err != nil {
		return access.Principal{}, nil, err
	}
	if tenant == nil {
		return access.Principal{}, nil, domain.ErrUnauthorized
	}
	return access.Principal{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		TenantID: user.TenantID,
		Role:     role,
	}, tenant, nil
}

// Tenant negocio del principal.
func (uc *AuthUseCase) Tenant(ctx context.Context, actor access.Principal) (*entity.Tenant, error) {
	t, err := uc.tenantRepo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Bootstrap crea un negocio con su pemilik. Lo usan el seed y las pruebas; no hay registro público.
func (uc *AuthUseCase) Bootstrap(ctx context.Context, tenant entity.Tenant, ownerName, email, password string) (*entity.Tenant, *entity.User, error) {
	if strings.TrimSpace(tenant.Name) == "" {
		return nil, nil, domain.Invalid("Nama toko wajib diisi")
	}
	existing, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrDuplicate
	}
	now := time.Now()
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	tenant.CreatedAt = now
	if err := uc.tenantRepo.Create(ctx, &tenant); err != nil {
		return nil, nil, err
	}
	owner, err := uc.createUser(ctx, tenant.ID, ownerName, email, password, access.Owner)
	if err != nil {
		return nil, nil, err
	}
	uc.log.Info().Str("tenant_id", tenant.ID).Str("user_id", owner.ID).Msg("negocio creado")
	return &tenant, owner, nil
}

// RegisterUser crea un usuario en el negocio del actor. Solo el pemilik puede hacerlo.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, actor access.Principal, name, email, password string, role access.Role) (*entity.User, error) {
	if err := access.Require(actor.Role, access.PermManageUsers); err != nil {
		return nil, err
	}
	return uc.createUser(ctx, actor.TenantID, name, email, password, role)
}

func (uc *AuthUseCase) createUser(ctx context.Context, tenantID, name, email, password string, role access.Role) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 6 {
		return nil, domain.Invalid("Email wajib diisi dan password minimal 6 karakter")
	}
	if _, err := access.ParseRole(string(role)); err != nil {
		return nil, domain.Invalid("Peran tidak valid")
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         string(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers empleados del negocio del actor.
func (uc *AuthUseCase) ListUsers(ctx context.Context, actor access.Principal) ([]entity.User, error) {
	if err := access.Require(actor.Role, access.PermManageUsers); err != nil {
		return nil, err
	}
	return uc.userRepo.ListByTenant(ctx, actor.TenantID)
}

// CreateUser alta de un empleado con password inicial. Sin rol, kasir.
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor access.Principal, in dto.CreateUserRequest) (*entity.User, error) {
	role := access.Cashier
	if in.Role != "" {
		r, err := access.ParseRole(in.Role)
		if err != nil {
			return nil, domain.Invalid("Peran tidak valid")
		}
		role = r
	}
	user, err := uc.RegisterUser(ctx, actor, in.Name, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("user_id", user.ID).Str("role", user.Role).Msg("empleado creado")
	return user, nil
}

// staff empleado del negocio del actor, distinto del propio actor.
func (uc *AuthUseCase) staff(ctx context.Context, actor access.Principal, id string) (*entity.User, error) {
	if err := access.Require(actor.Role, access.PermManageUsers); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, errSelfEdit
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TenantID != actor.TenantID {
		return nil, errStaffNotFound
	}
	return user, nil
}

// UpdateUser cambia nombre, rol o estado de otro empleado.
func (uc *AuthUseCase) UpdateUser(ctx context.Context, actor access.Principal, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	user, err := uc.staff(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("Nama wajib diisi")
		}
		user.Name = name
	}
	if in.Role != nil {
		role, err := access.ParseRole(*in.Role)
		if err != nil {
			return nil, domain.Invalid("Peran tidak valid")
		}
		user.Role = string(role)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser baja lógica: el historial conserva al cajero.
func (uc *AuthUseCase) DeactivateUser(ctx context.Context, actor access.Principal, id string) error {
	user, err := uc.staff(ctx, actor, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("user_id", user.ID).Msg("empleado desactivado")
	return nil
}

// ChangePassword cambia el password del propio actor tras verificar el actual.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, actor access.Principal, current, next string) error {
	if len(next) < 6 {
		return domain.Invalid("Password minimal 6 karakter")
	}
	user, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return uc.userRepo.Update(ctx, user)
}

// UpdateTenant actualiza el perfil del negocio impreso en los comprobantes.
func (uc *AuthUseCase) UpdateTenant(ctx context.Context, actor access.Principal, in dto.UpdateSettingsRequest) (*entity.Tenant, error) {
	if err := access.Require(actor.Role, access.PermSettings); err != nil {
		return nil, err
	}
	t, err := uc.Tenant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("Nama toko wajib diisi")
		}
		t.Name = name
	}
	if in.Address != nil {
		t.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		t.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := uc.tenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
