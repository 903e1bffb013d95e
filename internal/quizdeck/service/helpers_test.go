package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store/drivers/sqlite"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "quizdeck-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// captureMailer records outbound tokens so tests can complete the flows
// that normally run through email.
type captureMailer struct {
	mu sync.Mutex

	verificationTokens map[string]string // email -> token
	resetTokens        map[string]string
	invitationTokens   map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		verificationTokens: make(map[string]string),
		resetTokens:        make(map[string]string),
		invitationTokens:   make(map[string]string),
	}
}

func (m *captureMailer) SendVerification(_ context.Context, toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verificationTokens[toEmail] = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetTokens[toEmail] = token
	return nil
}

func (m *captureMailer) SendInvitation(_ context.Context, toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitationTokens[toEmail] = token
	return nil
}

func idxNew() string { return idx.New().String() }

func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func fingerprint(token string) string { return cryptox.FingerprintToken(token) }

func createUser(t *testing.T, st store.Store, username, email, password string, role domain.Role) domain.AdminUser {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.AdminUser{
		ID:            idx.New().String(),
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		Active:        true,
		EmailVerified: true,
	}
	require.NoError(t, st.Users().Create(context.Background(), user))
	return user
}

func createCategory(t *testing.T, st store.Store, name string) domain.Category {
	t.Helper()

	cat := domain.Category{ID: idx.New().String(), Name: name}
	require.NoError(t, st.Categories().Create(context.Background(), cat))
	return cat
}

func createQuestion(t *testing.T, st store.Store, categoryID, text, correct string) domain.Question {
	t.Helper()

	q := domain.Question{
		ID:            idx.New().String(),
		QuestionText:  text,
		OptionA:       "option a",
		OptionB:       "option b",
		OptionC:       "option c",
		OptionD:       "option d",
		CorrectAnswer: correct,
		CategoryID:    categoryID,
	}
	require.NoError(t, st.Questions().Create(context.Background(), q))
	return q
}
