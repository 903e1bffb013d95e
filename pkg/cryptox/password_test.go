package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "quizdeck-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)

	hash2, err := HashPassword(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	require.NoError(t, VerifyPassword(password, hash1))
	require.NoError(t, VerifyPassword(password, hash2))
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	for _, password := range []string{"hunter2!A", "P@ssw0rd", strings.Repeat("x", 64)} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.NoError(t, VerifyPassword(password, hash))
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name          string
		wrongPassword string
	}{
		{"completely wrong", "wrong-password"},
		{"case difference", "Correct-Password"},
		{"extra space", "correct-password "},
		{"empty password", ""},
		{"truncated", "correct-passwor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.wrongPassword, hash)
			require.Error(t, err)
			require.Contains(t, err.Error(), "password does not match")
		})
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must error, never panic.
			require.Error(t, VerifyPassword("anything", tt.digest))
		})
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43) // 32 bytes base64url, no padding

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("some-token")
	fp2 := FingerprintToken("some-token")
	fp3 := FingerprintToken("other-token")

	require.Equal(t, fp1, fp2, "fingerprints are deterministic")
	require.NotEqual(t, fp1, fp3)
	require.Len(t, fp1, 43)
}
