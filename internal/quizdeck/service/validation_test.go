package service

import (
	"testing"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/stretchr/testify/require"
)

func TestPasswordReasons(t *testing.T) {
	t.Parallel()

	t.Run("acceptable password has no reasons", func(t *testing.T) {
		require.Empty(t, passwordReasons("Str0ng!pass"))
	})

	t.Run("all rules reported together", func(t *testing.T) {
		reasons := passwordReasons("abc")
		require.Len(t, reasons, 4)
		require.Contains(t, reasons, "password must be at least 8 characters long")
		require.Contains(t, reasons, "password must contain an uppercase letter")
		require.Contains(t, reasons, "password must contain a digit")
		require.Contains(t, reasons, "password must contain a special character")
	})

	t.Run("each rule independent", func(t *testing.T) {
		require.Contains(t, passwordReasons("nouppercase1!"), "password must contain an uppercase letter")
		require.Contains(t, passwordReasons("NOLOWERCASE1!"), "password must contain a lowercase letter")
		require.Contains(t, passwordReasons("NoDigits!!"), "password must contain a digit")
		require.Contains(t, passwordReasons("NoSpecial11"), "password must contain a special character")
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		// 6 characters but 8 bytes: still too short.
		require.Contains(t, passwordReasons("Aa1!éé"),
			"password must be at least 8 characters long")
		// 8 characters satisfies the rule regardless of byte length.
		require.Empty(t, passwordReasons("Aa1!éééé"))
	})

	t.Run("every special character in the set counts", func(t *testing.T) {
		for _, r := range passwordSpecialChars {
			require.Empty(t, passwordReasons("Passw0rd"+string(r)))
		}
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	require.True(t, validEmail("user@example.com"))
	require.True(t, validEmail("first.last@sub.example.co"))

	require.False(t, validEmail(""))
	require.False(t, validEmail("plain"))
	require.False(t, validEmail("no@tld"))
	require.False(t, validEmail("two@@example.com"))
	require.False(t, validEmail("spaces in@example.com"))
}

func TestValidUsername(t *testing.T) {
	t.Parallel()

	require.True(t, validUsername("abc"))
	require.True(t, validUsername("user_name_20_chars__"))
	require.True(t, validUsername("Quiz123"))

	require.False(t, validUsername("ab"))
	require.False(t, validUsername("this_username_is_way_too_long"))
	require.False(t, validUsername("bad-dash"))
	require.False(t, validUsername("has space"))
	require.False(t, validUsername(""))
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	valid := RegistrationInput{
		Username:        "newadmin",
		Email:           "new@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		Role:            domain.RoleAdmin,
	}

	t.Run("valid input passes", func(t *testing.T) {
		require.NoError(t, validateRegistration(valid, domain.SelfRegisterRoles))
	})

	t.Run("violations are batched, not fail-fast", func(t *testing.T) {
		in := RegistrationInput{
			Username:        "x",
			Email:           "not-an-email",
			Password:        "weak",
			ConfirmPassword: "different",
			Role:            domain.Role("owner"),
		}
		err := validateRegistration(in, domain.SelfRegisterRoles)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Reasons, "passwords do not match")
		require.Contains(t, verr.Reasons, "invalid email format")
		require.Contains(t, verr.Reasons, "username must be 3-20 characters, alphanumeric and underscore only")
		require.GreaterOrEqual(t, len(verr.Reasons), 5)
	})

	t.Run("role whitelist enforced", func(t *testing.T) {
		in := valid
		in.Role = domain.RoleSuperAdmin

		require.NoError(t, validateRegistration(in, domain.SelfRegisterRoles))

		err := validateRegistration(in, domain.InvitableRoles)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
