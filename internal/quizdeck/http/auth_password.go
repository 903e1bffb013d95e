package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// PasswordHandler serves the password-reset pair of endpoints.
type PasswordHandler struct {
	AuthService *service.AuthService
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleResetRequest serves POST /auth/password-reset-request. The response
// is byte-identical whether or not the email belongs to an account.
func (h *PasswordHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		errInvalidBody.WriteError(w)
		return
	}

	if err := h.AuthService.PasswordResetRequest(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "if the email address is registered, a password reset link has been sent",
	})
}

// HandleReset serves POST /auth/password-reset.
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token           string `json:"token"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		errInvalidBody.WriteError(w)
		return
	}

	if err := h.AuthService.PasswordReset(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "password has been reset successfully",
	})
}
