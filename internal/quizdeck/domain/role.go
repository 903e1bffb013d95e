package domain

// Role is an admin-user role name.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleSuperAdmin Role = "super_admin"
)

// SelfRegisterRoles may be chosen at direct self-registration.
var SelfRegisterRoles = []Role{RoleAdmin, RoleModerator, RoleSuperAdmin}

// InvitableRoles may be granted through an invitation. super_admin is
// deliberately excluded: the highest role can't be handed out via a token
// that travels over email.
var InvitableRoles = []Role{RoleAdmin, RoleModerator}

// InviterRoles may issue invitations.
var InviterRoles = []Role{RoleSuperAdmin, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the role name.
func (r Role) String() string { return string(r) }

// RoleAllowed is the single capability check: it reports whether actor is
// one of the required roles. All authorization decisions route through here
// (or the HTTP middleware built on the same rule) rather than comparing
// role strings inline.
func RoleAllowed(actor Role, required ...Role) bool {
	for _, r := range required {
		if actor == r {
			return true
		}
	}
	return false
}

// RoleNames converts a role set to its string form, for middleware wiring.
func RoleNames(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
