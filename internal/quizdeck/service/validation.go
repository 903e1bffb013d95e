package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

const passwordSpecialChars = `!@#$%^&*()_+-=[]{}|;:,.<>?`

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^\w{3,20}$`)
)

// passwordReasons returns every policy rule the password violates, in a
// fixed order. Empty means the password is acceptable.
func passwordReasons(password string) []string {
	var reasons []string

	// Characters, not bytes: multibyte runes count once.
	if utf8.RuneCountInString(password) < 8 {
		reasons = append(reasons, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		reasons = append(reasons, "password must contain an uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "password must contain a lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "password must contain a digit")
	}
	if !hasSpecial {
		reasons = append(reasons, "password must contain a special character")
	}

	return reasons
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// RegistrationInput is the common shape of direct and admin-created
// registrations.
type RegistrationInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Role            domain.Role
}

// validateRegistration collects every violated rule. allowedRoles controls
// which roles the flow may grant.
func validateRegistration(in RegistrationInput, allowedRoles []domain.Role) error {
	var reasons []string

	if in.Password != in.ConfirmPassword {
		reasons = append(reasons, "passwords do not match")
	}
	reasons = append(reasons, passwordReasons(in.Password)...)

	if !validEmail(in.Email) {
		reasons = append(reasons, "invalid email format")
	}
	if !validUsername(in.Username) {
		reasons = append(reasons, "username must be 3-20 characters, alphanumeric and underscore only")
	}

	allowed := false
	for _, r := range allowedRoles {
		if in.Role == r {
			allowed = true
			break
		}
	}
	if !allowed {
		reasons = append(reasons, fmt.Sprintf("role must be one of: %s",
			strings.Join(domain.RoleNames(allowedRoles), ", ")))
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// validatePasswordChange covers the reset-completion flow, where only the
// password rules apply.
func validatePasswordChange(password, confirm string) error {
	var reasons []string

	if password != confirm {
		reasons = append(reasons, "passwords do not match")
	}
	reasons = append(reasons, passwordReasons(password)...)

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
