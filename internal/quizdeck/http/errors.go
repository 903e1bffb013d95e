package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

const (
	errorCodeInvalidRequest   = "invalid_request"
	errorCodeValidationFailed = "validation_failed"
	errorCodeInvalidGrant     = "invalid_grant"
	errorCodeInvalidToken     = "invalid_token"
	errorCodeForbidden        = "insufficient_role"
	errorCodeConflict         = "conflict"
	errorCodeNotFound         = "not_found"
	errorCodeServerError      = "server_error"
)

// APIError is the JSON error envelope. Validation failures additionally
// carry the full list of violated rules.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string   `json:"error"`
	Description string   `json:"error_description"`
	Reasons     []string `json:"reasons,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error to the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	errInvalidBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        errorCodeInvalidRequest,
		Description: "the request body is malformed or missing required parameters",
	}

	errInvalidContentType = &APIError{
		StatusCode:  http.StatusUnsupportedMediaType,
		Code:        errorCodeInvalidRequest,
		Description: "unsupported content type",
	}

	errServer = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        errorCodeServerError,
		Description: "internal server error",
	}
)

// writeServiceError translates service-layer errors into the JSON envelope.
// Anything unrecognized is logged and surfaced as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeValidationFailed,
			Description: "validation failed",
			Reasons:     verr.Reasons,
		}).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		(&APIError{
			StatusCode:  http.StatusUnauthorized,
			Code:        errorCodeInvalidGrant,
			Description: "incorrect username or password",
		}).WriteError(w)

	case errors.Is(err, service.ErrForbidden):
		(&APIError{
			StatusCode:  http.StatusForbidden,
			Code:        errorCodeForbidden,
			Description: "insufficient role for this operation",
		}).WriteError(w)

	case errors.Is(err, service.ErrUsernameTaken):
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeConflict,
			Description: "username already registered",
		}).WriteError(w)

	case errors.Is(err, service.ErrEmailTaken):
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeConflict,
			Description: "email already registered",
		}).WriteError(w)

	case errors.Is(err, service.ErrCategoryNameTaken):
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeConflict,
			Description: "category name already exists",
		}).WriteError(w)

	case errors.Is(err, service.ErrInvitationInvalid):
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeInvalidToken,
			Description: "invitation invalid or expired",
		}).WriteError(w)

	case errors.Is(err, service.ErrTokenInvalid):
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCodeInvalidToken,
			Description: "token invalid or expired",
		}).WriteError(w)

	case errors.Is(err, service.ErrCategoryNotFound):
		(&APIError{
			StatusCode:  http.StatusNotFound,
			Code:        errorCodeNotFound,
			Description: "category not found",
		}).WriteError(w)

	case errors.Is(err, service.ErrNoQuestions):
		(&APIError{
			StatusCode:  http.StatusNotFound,
			Code:        errorCodeNotFound,
			Description: "no questions found for this category",
		}).WriteError(w)

	case errors.Is(err, service.ErrNotFound):
		(&APIError{
			StatusCode:  http.StatusNotFound,
			Code:        errorCodeNotFound,
			Description: "resource not found",
		}).WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		errServer.WriteError(w)
	}
}
