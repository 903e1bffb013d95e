package domain

import "time"

// Invitation is a single-use, time-limited grant permitting one specific
// email to self-register with a pre-assigned role. Only the SHA-256
// fingerprint of the opaque invitation token is stored. Once Used is true
// the invitation can never yield another registration; once ExpiresAt has
// passed it can't be consumed regardless of Used.
type Invitation struct {
	ID        string
	TokenHash string
	Email     string
	Role      Role
	InvitedBy string // AdminUser id of the issuer
	Used      bool
	UsedBy    string // empty until consumed
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
