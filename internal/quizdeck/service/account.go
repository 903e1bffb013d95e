package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

// AccountService covers admin-initiated user management, as opposed to the
// self-service flows in AuthService.
type AccountService struct {
	Store store.Store
}

// Create adds an admin user on behalf of an already-authenticated admin.
// Same validation as self-registration, but no verification email round
// trip is started.
func (s *AccountService) Create(ctx context.Context, in RegistrationInput) (domain.AdminUser, error) {
	log := slogx.FromContext(ctx)

	if err := validateRegistration(in, domain.SelfRegisterRoles); err != nil {
		return domain.AdminUser{}, err
	}

	if _, err := s.Store.Users().GetByUsername(ctx, in.Username); err == nil {
		return domain.AdminUser{}, ErrUsernameTaken
	} else if !isNotFound(err) {
		return domain.AdminUser{}, err
	}
	if _, err := s.Store.Users().GetByEmail(ctx, in.Email); err == nil {
		return domain.AdminUser{}, ErrEmailTaken
	} else if !isNotFound(err) {
		return domain.AdminUser{}, err
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	user := domain.AdminUser{
		ID:           idx.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		log.Error("failed to create admin user", slog.Any("error", err))
		return domain.AdminUser{}, mapUserConstraint(err)
	}

	log.Info("admin user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// List returns all admin users, newest first.
func (s *AccountService) List(ctx context.Context) ([]domain.AdminUser, error) {
	return s.Store.Users().List(ctx)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
