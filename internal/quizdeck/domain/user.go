package domain

import "time"

// AdminUser is an administrative account. Username and email are each
// globally unique. PasswordHash is an argon2id PHC string, never the
// plaintext. ResetTokenHash and ResetTokenExpiresAt are set and cleared
// together: both present or both absent.
type AdminUser struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string // optional
	LastName     string // optional
	Role         Role
	Active       bool

	EmailVerified         bool
	VerificationTokenHash *string // nil once verified

	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
