package middleware

import (
	"net/http"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
)

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			failUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func failUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if sessionExpired(r.Context()) {
		api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired", GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
}

func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r.Context())
			if !ok {
				failUnauthenticated(w, r)
				return
			}
			if !auth.HasPermission(sess.Role, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
