package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store/drivers/sqlite"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "quizdeck-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

type testEnv struct {
	server *httptest.Server
	store  store.Store
	mailer *captureMailer
}

// captureMailer records outbound tokens so tests can complete email flows.
type captureMailer struct {
	verificationTokens map[string]string
	resetTokens        map[string]string
	invitationTokens   map[string]string
}

func (m *captureMailer) SendVerification(_ context.Context, toEmail, _, token string) error {
	m.verificationTokens[toEmail] = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, toEmail, _, token string) error {
	m.resetTokens[toEmail] = token
	return nil
}

func (m *captureMailer) SendInvitation(_ context.Context, toEmail, _, token string) error {
	m.invitationTokens[toEmail] = token
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, verifier, err := jwtx.NewEphemeralEdDSA("test-key", "test-issuer")
	require.NoError(t, err)

	mail := &captureMailer{
		verificationTokens: make(map[string]string),
		resetTokens:        make(map[string]string),
		invitationTokens:   make(map[string]string),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(verifier, "test", st, logger)
	router.AuthService = &service.AuthService{
		Store:     st,
		Signer:    signer,
		Mailer:    mail,
		Issuer:    "test-issuer",
		AccessTTL: 30 * time.Minute,
	}
	router.InviteService = &service.InviteService{Store: st, Mailer: mail}
	router.AccountService = &service.AccountService{Store: st}
	router.CategoryService = &service.CategoryService{Store: st}
	router.QuestionService = &service.QuestionService{Store: st}
	router.QuizService = &service.QuizService{Store: st}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: st, mailer: mail}
}

func (e *testEnv) createUser(t *testing.T, username, email, password string, role domain.Role) domain.AdminUser {
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
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	resp, err := http.PostForm(e.server.URL+"/auth/token", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "Str0ng!pass", domain.RoleAdmin)

	t.Run("valid credentials return a bearer token", func(t *testing.T) {
		token := env.login(t, "alice", "Str0ng!pass")

		resp := env.do(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me map[string]any
		decodeBody(t, resp, &me)
		require.Equal(t, "alice", me["username"])
		require.Equal(t, "admin", me["role"])
		require.NotContains(t, me, "password_hash")
	})

	t.Run("bad credentials return 401", func(t *testing.T) {
		resp, err := http.PostForm(env.server.URL+"/auth/token", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		})
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("missing token on protected endpoint", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/auth/me", "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/auth/me", "not.a.jwt", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRegistrationEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("direct registration with verification", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"username":         "newadmin",
			"email":            "new@example.com",
			"password":         "Str0ng!pass",
			"confirm_password": "Str0ng!pass",
			"role":             "admin",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			User                      map[string]any `json:"user"`
			RequiresEmailVerification bool           `json:"requires_email_verification"`
		}
		decodeBody(t, resp, &body)
		require.True(t, body.RequiresEmailVerification)
		require.Equal(t, false, body.User["is_email_verified"])

		// Complete verification with the emailed token.
		token := env.mailer.verificationTokens["new@example.com"]
		require.NotEmpty(t, token)

		verifyResp := env.do(t, http.MethodPost, "/auth/verify-email", "", map[string]string{"token": token})
		defer verifyResp.Body.Close()
		require.Equal(t, http.StatusOK, verifyResp.StatusCode)
	})

	t.Run("weak input returns itemized reasons", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"username":         "x",
			"email":            "bad",
			"password":         "weak",
			"confirm_password": "other",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Code    string   `json:"error"`
			Reasons []string `json:"reasons"`
		}
		decodeBody(t, resp, &body)
		require.Equal(t, "validation_failed", body.Code)
		require.GreaterOrEqual(t, len(body.Reasons), 4)
	})

	t.Run("invited registration round trip", func(t *testing.T) {
		env.createUser(t, "root", "root@example.com", "Str0ng!pass", domain.RoleSuperAdmin)
		rootToken := env.login(t, "root", "Str0ng!pass")

		inviteResp := env.do(t, http.MethodPost, "/auth/invite", rootToken, map[string]string{
			"email": "invitee@example.com",
			"role":  "moderator",
		})
		require.Equal(t, http.StatusOK, inviteResp.StatusCode)

		var invite struct {
			InvitationID string `json:"invitation_id"`
		}
		decodeBody(t, inviteResp, &invite)
		require.NotEmpty(t, invite.InvitationID)

		regResp := env.do(t, http.MethodPost,
			"/auth/register/invited?invitation_id="+url.QueryEscape(invite.InvitationID), "",
			map[string]string{
				"username":         "invitee",
				"email":            "invitee@example.com",
				"password":         "Str0ng!pass",
				"confirm_password": "Str0ng!pass",
			})
		require.Equal(t, http.StatusOK, regResp.StatusCode)

		var reg struct {
			User map[string]any `json:"user"`
		}
		decodeBody(t, regResp, &reg)
		require.Equal(t, "moderator", reg.User["role"])
		require.Equal(t, true, reg.User["is_email_verified"])

		// The invitation is spent.
		again := env.do(t, http.MethodPost,
			"/auth/register/invited?invitation_id="+url.QueryEscape(invite.InvitationID), "",
			map[string]string{
				"username":         "invitee2",
				"email":            "invitee@example.com",
				"password":         "Str0ng!pass",
				"confirm_password": "Str0ng!pass",
			})
		defer again.Body.Close()
		require.Equal(t, http.StatusBadRequest, again.StatusCode)
	})

	t.Run("moderator cannot issue invitations", func(t *testing.T) {
		env.createUser(t, "modest", "modest@example.com", "Str0ng!pass", domain.RoleModerator)
		modToken := env.login(t, "modest", "Str0ng!pass")

		resp := env.do(t, http.MethodPost, "/auth/invite", modToken, map[string]string{
			"email": "whoever@example.com",
			"role":  "admin",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "erin", "erin@example.com", "Or1ginal!pw", domain.RoleAdmin)

	t.Run("responses identical for known and unknown email", func(t *testing.T) {
		known := env.do(t, http.MethodPost, "/auth/password-reset-request", "",
			map[string]string{"email": "erin@example.com"})
		knownBody, err := io.ReadAll(known.Body)
		known.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, known.StatusCode)

		unknown := env.do(t, http.MethodPost, "/auth/password-reset-request", "",
			map[string]string{"email": "ghost@example.com"})
		unknownBody, err := io.ReadAll(unknown.Body)
		unknown.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, unknown.StatusCode)

		require.Equal(t, string(knownBody), string(unknownBody))
	})

	t.Run("reset completes with emailed token", func(t *testing.T) {
		token := env.mailer.resetTokens["erin@example.com"]
		require.NotEmpty(t, token)

		resp := env.do(t, http.MethodPost, "/auth/password-reset", "", map[string]string{
			"token":            token,
			"new_password":     "Fresh!pw123",
			"confirm_password": "Fresh!pw123",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env.login(t, "erin", "Fresh!pw123")
	})

	t.Run("spent token rejected", func(t *testing.T) {
		token := env.mailer.resetTokens["erin@example.com"]
		resp := env.do(t, http.MethodPost, "/auth/password-reset", "", map[string]string{
			"token":            token,
			"new_password":     "Anoth3r!pw1",
			"confirm_password": "Anoth3r!pw1",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", "admin@example.com", "Str0ng!pass", domain.RoleAdmin)
	token := env.login(t, "admin", "Str0ng!pass")

	var categoryID string

	t.Run("category create requires auth", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/admin/categories", "", map[string]string{"name": "History"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("category CRUD", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/admin/categories", token,
			map[string]string{"name": "History", "description": "past events"})
		require.Equal(t, http.StatusOK, created.StatusCode)

		var cat map[string]any
		decodeBody(t, created, &cat)
		categoryID = cat["id"].(string)
		require.NotEmpty(t, categoryID)

		dup := env.do(t, http.MethodPost, "/admin/categories", token, map[string]string{"name": "History"})
		dup.Body.Close()
		require.Equal(t, http.StatusBadRequest, dup.StatusCode)

		updated := env.do(t, http.MethodPut, "/admin/categories/"+categoryID, token,
			map[string]string{"description": "all of the past"})
		var after map[string]any
		decodeBody(t, updated, &after)
		require.Equal(t, "History", after["name"])
		require.Equal(t, "all of the past", after["description"])

		list := env.do(t, http.MethodGet, "/admin/categories", token, nil)
		var cats []map[string]any
		decodeBody(t, list, &cats)
		require.Len(t, cats, 1)
	})

	t.Run("question CRUD", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/admin/questions", token, map[string]string{
			"question_text":  "When did WW2 end?",
			"option_a":       "1943",
			"option_b":       "1944",
			"option_c":       "1945",
			"option_d":       "1946",
			"correct_answer": "c",
			"category_id":    categoryID,
		})
		require.Equal(t, http.StatusOK, created.StatusCode)

		var q map[string]any
		decodeBody(t, created, &q)
		require.Equal(t, "C", q["correct_answer"])
		questionID := q["id"].(string)

		badCat := env.do(t, http.MethodPost, "/admin/questions", token, map[string]string{
			"question_text":  "orphan",
			"option_a":       "a",
			"option_b":       "b",
			"option_c":       "c",
			"option_d":       "d",
			"correct_answer": "A",
			"category_id":    "missing",
		})
		badCat.Body.Close()
		require.Equal(t, http.StatusNotFound, badCat.StatusCode)

		deleted := env.do(t, http.MethodDelete, "/admin/questions/"+questionID, token, nil)
		deleted.Body.Close()
		require.Equal(t, http.StatusOK, deleted.StatusCode)
	})

	t.Run("admin user create and list", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/admin/users", token, map[string]string{
			"username": "colleague",
			"email":    "colleague@example.com",
			"password": "Str0ng!pass",
			"role":     "moderator",
		})
		created.Body.Close()
		require.Equal(t, http.StatusOK, created.StatusCode)

		list := env.do(t, http.MethodGet, "/admin/users", token, nil)
		var users []map[string]any
		decodeBody(t, list, &users)
		require.Len(t, users, 2)
	})
}

func TestQuizEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", "admin@example.com", "Str0ng!pass", domain.RoleAdmin)
	token := env.login(t, "admin", "Str0ng!pass")

	// Seed a category with three questions through the admin API.
	created := env.do(t, http.MethodPost, "/admin/categories", token, map[string]string{"name": "Math"})
	var cat map[string]any
	decodeBody(t, created, &cat)
	categoryID := cat["id"].(string)

	questionIDs := make([]string, 0, 3)
	for _, correct := range []string{"A", "B", "C"} {
		resp := env.do(t, http.MethodPost, "/admin/questions", token, map[string]string{
			"question_text":  "question " + correct,
			"option_a":       "a",
			"option_b":       "b",
			"option_c":       "c",
			"option_d":       "d",
			"correct_answer": correct,
			"category_id":    categoryID,
		})
		var q map[string]any
		decodeBody(t, resp, &q)
		questionIDs = append(questionIDs, q["id"].(string))
	}

	t.Run("categories include question counts", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/quiz/categories", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var cats []map[string]any
		decodeBody(t, resp, &cats)
		require.Len(t, cats, 1)
		require.Equal(t, float64(3), cats[0]["question_count"])
	})

	t.Run("questions omit the answer", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/quiz/questions/"+categoryID, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.NotContains(t, strings.ToLower(string(raw)), "correct_answer")

		var questions []map[string]any
		require.NoError(t, json.Unmarshal(raw, &questions))
		require.Len(t, questions, 3)
		require.Equal(t, "Math", questions[0]["category_name"])
	})

	t.Run("unknown category is 404", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/quiz/questions/missing", "", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("random draw honors limit", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/quiz/random/"+categoryID+"?limit=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var questions []map[string]any
		decodeBody(t, resp, &questions)
		require.Len(t, questions, 2)
	})

	t.Run("submit scores over submitted answers", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/quiz/submit/"+categoryID, "", []map[string]string{
			{"question_id": questionIDs[0], "selected_answer": "a"},
			{"question_id": questionIDs[1], "selected_answer": "D"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]any
		decodeBody(t, resp, &result)
		require.Equal(t, float64(2), result["total_questions"])
		require.Equal(t, float64(1), result["correct_answers"])
		require.Equal(t, float64(50), result["score_percentage"])
		require.Equal(t, "Math", result["category_name"])
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	livez := env.do(t, http.MethodGet, "/livez", "", nil)
	var live map[string]any
	decodeBody(t, livez, &live)
	require.Equal(t, "ok", live["status"])

	readyz := env.do(t, http.MethodGet, "/readyz", "", nil)
	var ready map[string]any
	decodeBody(t, readyz, &ready)
	require.Equal(t, "ok", ready["status"])
	require.Equal(t, "ok", ready["database"])
}
