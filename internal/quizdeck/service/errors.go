package service

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated covers unknown username, wrong password, and
	// inactive accounts on login. Callers must not be able to tell which.
	ErrUnauthenticated = errors.New("incorrect username or password")

	ErrForbidden = errors.New("insufficient role")
	ErrNotFound  = errors.New("not found")

	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")

	// ErrInvitationInvalid covers unknown, used, and expired invitations
	// as well as email mismatches. One error for all so an attacker can't
	// probe invitation state.
	ErrInvitationInvalid = errors.New("invitation invalid or expired")

	// ErrTokenInvalid covers unknown and expired reset or verification
	// tokens.
	ErrTokenInvalid = errors.New("token invalid or expired")
)

// ValidationError carries every rule the input violated so the caller can
// fix them all in one round trip.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}
