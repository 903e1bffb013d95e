package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole gates a handler on the caller's role being one of the
// required set. This is the single role-policy choke point; handlers never
// compare role strings themselves.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[RoleFromCtx(r.Context())]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeBearerRoleError(w, required...)
		})
	}
}

// RFC 6750-style error response for an insufficient role.
func writeBearerRoleError(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_role", role="`+strings.Join(required, " ")+`"`)
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("insufficient_role"))
}
