package http

import (
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// MeHandler serves GET /auth/me.
type MeHandler struct {
	AuthService *service.AuthService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.AuthService.Profile(r.Context(), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
