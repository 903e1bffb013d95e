package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// VerifyEmailHandler serves POST /auth/verify-email.
type VerifyEmailHandler struct {
	AuthService *service.AuthService
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		errInvalidBody.WriteError(w)
		return
	}

	if err := h.AuthService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "email verified successfully",
	})
}
