package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/mailer"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// InviteService issues and redeems admin invitations.
type InviteService struct {
	Store  store.Store
	Mailer mailer.Mailer
}

// InvitedRegistrationInput is the payload for registration through an
// invitation. Email must match the invitation; role comes from the
// invitation, never the caller.
type InvitedRegistrationInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// Issue mints an invitation for email with the given role. Only super_admin
// and admin callers may invite; super_admin itself can never be granted by
// invitation. The raw token is returned once and emailed; only its
// fingerprint is stored.
func (s *InviteService) Issue(ctx context.Context, inviter domain.AdminUser, email string, role domain.Role) (domain.Invitation, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Capability check.
	if !domain.RoleAllowed(inviter.Role, domain.InviterRoles...) {
		log.Warn("invite issuance by insufficient role",
			slog.String("user_id", inviter.ID),
			slog.String("role", inviter.Role.String()),
		)
		return domain.Invitation{}, "", ErrForbidden
	}

	// 2. Target email must be well-formed and not already an account.
	var reasons []string
	if !validEmail(email) {
		reasons = append(reasons, "invalid email format")
	}
	if !domain.RoleAllowed(role, domain.InvitableRoles...) {
		reasons = append(reasons, "invited role must be admin or moderator")
	}
	if len(reasons) > 0 {
		return domain.Invitation{}, "", &ValidationError{Reasons: reasons}
	}

	_, err := s.Store.Users().GetByEmail(ctx, email)
	if err == nil {
		return domain.Invitation{}, "", ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check invite target email", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	// 3. Mint the opaque token and persist its fingerprint.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		Email:     email,
		Role:      role,
		InvitedBy: inviter.ID,
		ExpiresAt: time.Now().UTC().Add(InvitationTTL),
	}
	if err := s.Store.Invitations().Create(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	// 4. Best-effort mail; the caller also receives the raw token.
	if err := s.Mailer.SendInvitation(ctx, email, role.String(), token); err != nil {
		log.Warn("invitation email not delivered", slog.String("invitation_id", inv.ID))
	}

	log.Info("invitation issued",
		slog.String("invitation_id", inv.ID),
		slog.String("role", role.String()),
		slog.String("invited_by", inviter.ID),
	)
	return inv, token, nil
}

// Redeem registers an account through an invitation. Creating the user and
// consuming the invitation happen in one transaction: either both commit or
// neither is visible.
func (s *InviteService) Redeem(ctx context.Context, invitationToken string, in InvitedRegistrationInput) (domain.AdminUser, error) {
	log := slogx.FromContext(ctx)

	// 1. Look up a not-used, not-expired invitation by fingerprint. Unknown,
	// used, and expired all collapse to the same error.
	inv, err := s.Store.Invitations().GetActiveByTokenHash(ctx, cryptox.FingerprintToken(invitationToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invited registration with invalid or expired invitation")
			return domain.AdminUser{}, ErrInvitationInvalid
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	// 2. The invitation binds one specific email.
	if in.Email != inv.Email {
		log.Warn("invited registration with mismatched email",
			slog.String("invitation_id", inv.ID),
		)
		return domain.AdminUser{}, ErrInvitationInvalid
	}

	// 3. Password and username rules, all violations together.
	var reasons []string
	if in.Password != in.ConfirmPassword {
		reasons = append(reasons, "passwords do not match")
	}
	reasons = append(reasons, passwordReasons(in.Password)...)
	if !validUsername(in.Username) {
		reasons = append(reasons, "username must be 3-20 characters, alphanumeric and underscore only")
	}
	if len(reasons) > 0 {
		return domain.AdminUser{}, &ValidationError{Reasons: reasons}
	}

	_, err = s.Store.Users().GetByUsername(ctx, in.Username)
	if err == nil {
		return domain.AdminUser{}, ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check username availability", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	// 4. Create the user and consume the invitation atomically. The account
	// is pre-verified: the invitation email already proved mailbox control.
	user := domain.AdminUser{
		ID:            idx.New().String(),
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  passwordHash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Role:          inv.Role,
		Active:        true,
		EmailVerified: true,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return mapUserConstraint(err)
		}
		return tx.Invitations().MarkUsed(ctx, inv.ID, user.ID)
	})
	if err != nil {
		// MarkUsed affects no row when a concurrent redemption consumed the
		// invitation after our read; the user insert rolls back with it.
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invited registration lost consumption race",
				slog.String("invitation_id", inv.ID),
			)
			return domain.AdminUser{}, ErrInvitationInvalid
		}
		log.Error("invited registration failed", slog.Any("error", err))
		return domain.AdminUser{}, err
	}

	log.Info("user registered via invitation",
		slog.String("user_id", user.ID),
		slog.String("invitation_id", inv.ID),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}
