package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/mailer"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/jwtx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

// ResetTokenTTL is how long a password-reset token stays redeemable.
const ResetTokenTTL = time.Hour

// AuthService orchestrates login, registration, password reset, and email
// verification.
type AuthService struct {
	Store  store.Store
	Signer jwtx.Signer
	Mailer mailer.Mailer

	Issuer    string
	AccessTTL time.Duration
}

// Login authenticates a username/password pair and issues an access token.
// Unknown username, wrong password, and inactive account all return
// ErrUnauthenticated so the caller can't enumerate accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.AdminUser, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash verification anyway so response timing doesn't
			// reveal whether the username exists.
			_ = cryptox.VerifyPassword(password,
				"$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
			return "", domain.AdminUser{}, ErrUnauthenticated
		}
		log.Error("failed to fetch user for login", slog.Any("error", err))
		return "", domain.AdminUser{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login with wrong password", slog.String("username", username))
		return "", domain.AdminUser{}, ErrUnauthenticated
	}

	if !user.Active {
		log.Warn("login on inactive account", slog.String("user_id", user.ID))
		return "", domain.AdminUser{}, ErrUnauthenticated
	}

	if err := s.Store.Users().StampLastLogin(ctx, user.ID); err != nil {
		log.Error("failed to stamp last login", slog.Any("error", err))
		return "", domain.AdminUser{}, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(
		user.ID, user.Username, user.Role.String(),
		ttl, s.Issuer, time.Now(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return "", domain.AdminUser{}, err
	}

	log.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return token, user, nil
}

// Register creates an account through direct self-registration. The new
// account starts unverified; a verification token is fingerprinted into the
// store and the raw token is emailed. Mail failure does not fail the
// registration.
func (s *AuthService) Register(ctx context.Context, in RegistrationInput) (domain.AdminUser, error) {
	log := slogx.FromContext(ctx)

	// 1. Collect every format/policy violation in one pass.
	if err := validateRegistration(in, domain.SelfRegisterRoles); err != nil {
		return domain.AdminUser{}, err
	}

	// 2. Username and email uniqueness, each its own failure.
	if err := s.requireUsernameFree(ctx, in.Username); err != nil {
		return domain.AdminUser{}, err
	}
	if err := s.requireEmailFree(ctx, in.Email); err != nil {
		return domain.AdminUser{}, err
	}

	// 3. Hash the password.
	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	// 4. Mint the email-verification token; only its fingerprint is stored.
	verifyToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate verification token", slog.Any("error", err))
		return domain.AdminUser{}, err
	}
	fingerprint := cryptox.FingerprintToken(verifyToken)

	user := domain.AdminUser{
		ID:                    idx.New().String(),
		Username:              in.Username,
		Email:                 in.Email,
		PasswordHash:          passwordHash,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		Role:                  in.Role,
		Active:                true,
		EmailVerified:         false,
		VerificationTokenHash: &fingerprint,
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		log.Error("failed to create user", slog.Any("error", err))
		return domain.AdminUser{}, mapUserConstraint(err)
	}

	// 5. Best-effort mail; the token also flows through /auth/verify-email.
	if err := s.Mailer.SendVerification(ctx, user.Email, user.Username, verifyToken); err != nil {
		log.Warn("verification email not delivered", slog.String("user_id", user.ID))
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}

// PasswordResetRequest mints a one-hour reset token for the account holding
// email. The response is identical whether or not the account exists.
func (s *AuthService) PasswordResetRequest(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deliberately indistinguishable from the success path.
			log.Info("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to fetch user for password reset", slog.Any("error", err))
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return err
	}

	expiresAt := time.Now().UTC().Add(ResetTokenTTL)
	if err := s.Store.Users().SetResetToken(ctx, user.ID, cryptox.FingerprintToken(token), expiresAt); err != nil {
		log.Error("failed to store reset token", slog.Any("error", err))
		return err
	}

	if err := s.Mailer.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		log.Warn("password reset email not delivered", slog.String("user_id", user.ID))
	}

	log.Info("password reset token issued", slog.String("user_id", user.ID))
	return nil
}

// PasswordReset redeems a reset token and installs the new password. The
// stored token and its expiry are cleared in the same statement as the
// password update.
func (s *AuthService) PasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	log := slogx.FromContext(ctx)

	if err := validatePasswordChange(newPassword, confirmPassword); err != nil {
		return err
	}

	user, err := s.Store.Users().GetByResetTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("password reset with invalid or expired token")
			return ErrTokenInvalid
		}
		log.Error("failed to look up reset token", slog.Any("error", err))
		return err
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash new password", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().UpdatePasswordAndClearReset(ctx, user.ID, newHash); err != nil {
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}

	log.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// VerifyEmail redeems an email-verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByVerificationTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("email verification with unknown token")
			return ErrTokenInvalid
		}
		log.Error("failed to look up verification token", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		log.Error("failed to mark email verified", slog.Any("error", err))
		return err
	}

	log.Info("email verified", slog.String("user_id", user.ID))
	return nil
}

// Profile returns the account behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.AdminUser, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AdminUser{}, ErrUnauthenticated
		}
		return domain.AdminUser{}, err
	}
	return user, nil
}

func (s *AuthService) requireUsernameFree(ctx context.Context, username string) error {
	_, err := s.Store.Users().GetByUsername(ctx, username)
	if err == nil {
		return ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) requireEmailFree(ctx context.Context, email string) error {
	_, err := s.Store.Users().GetByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// mapUserConstraint covers the race where two requests pass the uniqueness
// pre-check and both insert; the loser gets the same error as the pre-check
// would have produced. The store error names the violated column.
func mapUserConstraint(err error) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		if strings.Contains(err.Error(), "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return err
}
