package terminal

import (
	"context"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
)

// Karyawan y perfil del negocio

func (s *Service) ListUsers(ctx context.Context, sess *Session) ([]entity.User, error) {
	p, err := require(sess, access.PermManageUsers)
	if err != nil {
		return nil, err
	}
	users, err := s.backend.ListUsers(ctx, p)
	return users, s.observe(sess, "list_users", err)
}

func (s *Service) CreateUser(ctx context.Context, sess *Session, in dto.CreateUserRequest) (*entity.User, error) {
	p, err := require(sess, access.PermManageUsers)
	if err != nil {
		return nil, err
	}
	user, err := s.backend.CreateUser(ctx, p, in)
	if err != nil {
		return nil, s.observe(sess, "create_user", err)
	}
	s.publish(sess, EventStaffChanged, user.ID)
	return user, nil
}

// UpdateUser edita a otro empleado. Un cambio de rol o de estado cierra sus sesiones
// abiertas en este terminal: los permisos se leen al hacer login.
func (s *Service) UpdateUser(ctx context.Context, sess *Session, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	p, err := require(sess, access.PermManageUsers)
	if err != nil {
		return nil, err
	}
	user, err := s.backend.UpdateUser(ctx, p, id, in)
	if err != nil {
		return nil, s.observe(sess, "update_user", err)
	}
	if in.Role != nil || in.IsActive != nil {
		s.dropUser(sess, user.ID)
	}
	s.publish(sess, EventStaffChanged, user.ID)
	return user, nil
}

// DeactivateUser desactiva al empleado y cierra sus sesiones.
func (s *Service) DeactivateUser(ctx context.Context, sess *Session, id string) error {
	p, err := require(sess, access.PermManageUsers)
	if err != nil {
		return err
	}
	if err := s.backend.DeactivateUser(ctx, p, id); err != nil {
		return s.observe(sess, "deactivate_user", err)
	}
	s.dropUser(sess, id)
	s.publish(sess, EventStaffChanged, id)
	return nil
}

func (s *Service) dropUser(sess *Session, userID string) {
	if n := s.sessions.DropUser(userID); n > 0 {
		s.logFor(sess).Info().Str("target_user_id", userID).Int("sessions", n).Msg("sesiones del empleado cerradas")
	}
}

// ChangePassword cambia el password propio. Disponible para cualquier rol.
func (s *Service) ChangePassword(ctx context.Context, sess *Session, in dto.ChangePasswordRequest) error {
	err := s.backend.ChangePassword(ctx, sess.Principal(), in.CurrentPassword, in.NewPassword)
	return s.observe(sess, "change_password", err)
}

// UpdateSettings actualiza el perfil del negocio y lo propaga a las sesiones del tenant.
func (s *Service) UpdateSettings(ctx context.Context, sess *Session, in dto.UpdateSettingsRequest) (*entity.Tenant, error) {
	p, err := require(sess, access.PermSettings)
	if err != nil {
		return nil, err
	}
	tenant, err := s.backend.UpdateTenant(ctx, p, in)
	if err != nil {
		return nil, s.observe(sess, "update_settings", err)
	}
	s.sessions.SetTenant(*tenant)
	s.publish(sess, EventSettings, tenant.ID)
	return tenant, nil
}
