package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/requestctx"
)

type ctxKey string

const ctxKeyExpired ctxKey = "session_expired"

// Auth resolves the bearer token to a live session. Requests without a usable
// session pass through without one; when the token names a session that has
// timed out the request is marked so RequireAuth can say so.
func Auth(secret string, tracker *session.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess := session.Session{Username: claims.Username, Role: claims.Role, ID: claims.SessionID}
			if tracker != nil {
				sess, err = tracker.Touch(claims.SessionID)
				if err != nil {
					ctx := context.WithValue(r.Context(), ctxKeyExpired, true)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			ctx := requestctx.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func GetSession(ctx context.Context) (session.Session, bool) {
	return requestctx.GetSession(ctx)
}

func sessionExpired(ctx context.Context) bool {
	expired, _ := ctx.Value(ctxKeyExpired).(bool)
	return expired
}
