package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// UsersHandler serves the /admin/users endpoints.
type UsersHandler struct {
	AccountService *service.AccountService
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAdmin.String()
	}

	// Admin-created accounts may omit the confirmation field.
	if req.ConfirmPassword == "" {
		req.ConfirmPassword = req.Password
	}

	user, err := h.AccountService.Create(r.Context(), service.RegistrationInput{
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

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.AccountService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
