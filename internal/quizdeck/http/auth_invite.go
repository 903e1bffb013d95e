package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// InviteHandler serves POST /auth/invite.
type InviteHandler struct {
	AuthService   *service.AuthService
	InviteService *service.InviteService
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type inviteResponse struct {
	InvitationID string    `json:"invitation_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
	InvitedBy    string    `json:"invited_by"`
}

func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The issuing user's role is re-read from the store, not trusted from
	// the token, so a role change takes effect before token expiry.
	inviter, err := h.AuthService.Profile(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAdmin.String()
	}

	inv, token, err := h.InviteService.Issue(ctx, inviter, req.Email, domain.Role(role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The raw token doubles as the invitation identifier; it is shown
	// exactly once.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, inviteResponse{
		InvitationID: token,
		Email:        inv.Email,
		Role:         inv.Role.String(),
		ExpiresAt:    inv.ExpiresAt,
		InvitedBy:    inviter.Username,
	})
}
