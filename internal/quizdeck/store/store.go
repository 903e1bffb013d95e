package store

import (
	"context"
	"errors"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Invitations() Invitations
	Categories() Categories
	Questions() Questions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use this for
	// multi-step mutations that must be atomic (e.g. invited registration
	// plus invitation consumption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.AdminUser, error)

	// GetByUsername is used during login.
	GetByUsername(ctx context.Context, username string) (domain.AdminUser, error)

	// GetByEmail is used for uniqueness checks and password-reset requests.
	GetByEmail(ctx context.Context, email string) (domain.AdminUser, error)

	// Create inserts a new user (id is provided by the app via ULID).
	Create(ctx context.Context, u domain.AdminUser) error

	// List returns all users ordered by creation date (newest first).
	List(ctx context.Context) ([]domain.AdminUser, error)

	// StampLastLogin sets last_login to now and bumps updated_at.
	StampLastLogin(ctx context.Context, userID string) error

	// SetResetToken stores the reset token fingerprint and its expiry
	// together, replacing any previous pair.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByResetTokenHash returns the user holding an unexpired reset token
	// with the given fingerprint.
	GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.AdminUser, error)

	// UpdatePasswordAndClearReset sets password_hash and clears both reset
	// token fields in a single statement.
	UpdatePasswordAndClearReset(ctx context.Context, userID, newHash string) error

	// GetByVerificationTokenHash returns the user holding the given
	// email-verification token fingerprint.
	GetByVerificationTokenHash(ctx context.Context, tokenHash string) (domain.AdminUser, error)

	// MarkEmailVerified sets is_email_verified and clears the token.
	MarkEmailVerified(ctx context.Context, userID string) error

	// ClearExpiredResetTokens is housekeeping: drops token+expiry pairs
	// whose expiry has passed.
	ClearExpiredResetTokens(ctx context.Context) error
}

type Invitations interface {
	// Create writes a new invitation (token_hash is the SHA-256 fingerprint
	// of the opaque invitation token).
	Create(ctx context.Context, inv domain.Invitation) error

	// GetActiveByTokenHash returns a not-used, not-expired invitation.
	GetActiveByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// MarkUsed sets used=1, used_by=userID. Returns ErrNotFound when the
	// invitation was already consumed, so a racing redemption fails.
	MarkUsed(ctx context.Context, invitationID, usedByUserID string) error

	// DeleteExpired is housekeeping.
	DeleteExpired(ctx context.Context) error
}

type Categories interface {
	Create(ctx context.Context, c domain.Category) error
	GetByID(ctx context.Context, id string) (domain.Category, error)
	GetByName(ctx context.Context, name string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)

	// ListSummaries returns all categories with their question counts.
	ListSummaries(ctx context.Context) ([]domain.CategorySummary, error)

	Update(ctx context.Context, c domain.Category) error

	// Delete cascades to questions (per schema).
	Delete(ctx context.Context, id string) error
}

type Questions interface {
	Create(ctx context.Context, q domain.Question) error
	GetByID(ctx context.Context, id string) (domain.Question, error)

	// List returns questions, optionally filtered by category, with
	// offset/limit paging. categoryID == "" means no filter.
	List(ctx context.Context, categoryID string, offset, limit int) ([]domain.Question, error)

	// ListByCategory returns every question in a category.
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Question, error)

	// ListRandomByCategory returns up to limit questions in random order.
	ListRandomByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Question, error)

	Update(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id string) error
}
