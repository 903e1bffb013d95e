package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// RegisterHandler serves direct and invited registration.
type RegisterHandler struct {
	AuthService   *service.AuthService
	InviteService *service.InviteService
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            string `json:"role"`
}

type registerResponse struct {
	User                      userResponse `json:"user"`
	Message                   string       `json:"message"`
	RequiresEmailVerification bool         `json:"requires_email_verification"`
}

// HandleDirect serves POST /auth/register.
func (h *RegisterHandler) HandleDirect(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAdmin.String()
	}

	user, err := h.AuthService.Register(r.Context(), service.RegistrationInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            domain.Role(role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registerResponse{
		User:                      toUserResponse(user),
		Message:                   "registration successful, please verify your email address",
		RequiresEmailVerification: true,
	})
}

// HandleInvited serves POST /auth/register/invited?invitation_id=...
// The invitation_id query parameter carries the opaque invitation token.
func (h *RegisterHandler) HandleInvited(w http.ResponseWriter, r *http.Request) {
	invitationToken := r.URL.Query().Get("invitation_id")
	if invitationToken == "" {
		errInvalidBody.WriteError(w)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	user, err := h.InviteService.Redeem(r.Context(), invitationToken, service.InvitedRegistrationInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registerResponse{
		User:    toUserResponse(user),
		Message: "registration successful",
	})
}
