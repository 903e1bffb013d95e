package http

import (
	"net/http"
	"strings"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// TokenHandler serves POST /auth/token.
// Accepts application/x-www-form-urlencoded with username and password.
type TokenHandler struct {
	AuthService *service.AuthService
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		errInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		errInvalidBody.WriteError(w)
		return
	}

	token, _, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
