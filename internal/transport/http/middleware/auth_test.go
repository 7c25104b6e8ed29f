package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/requestctx"
)

func TestAuthMiddlewareSetsSession(t *testing.T) {
	secret := "test-secret"
	tracker := session.NewTracker(time.Minute, 2*time.Minute)
	defer tracker.Close()
	sess := tracker.Start("admin", auth.RoleAdmin, false)

	token, err := auth.GenerateToken(secret, auth.Claims{Username: "admin", Role: auth.RoleAdmin, SessionID: sess.ID}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret, tracker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, ok := GetSession(r.Context())
		if !ok {
			t.Fatal("expected session in context")
		}
		if got.Username != "admin" || got.Role != auth.RoleAdmin || got.ID != sess.ID {
			t.Fatalf("unexpected session: %+v", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); ok {
			t.Fatal("did not expect session in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthMiddlewareRejectsEndedSession(t *testing.T) {
	secret := "test-secret"
	tracker := session.NewTracker(time.Minute, 2*time.Minute)
	defer tracker.Close()
	sess := tracker.Start("admin", auth.RoleAdmin, false)
	tracker.End(sess.ID)

	token, err := auth.GenerateToken(secret, auth.Claims{Username: "admin", Role: auth.RoleAdmin, SessionID: sess.ID}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	handler := Auth(secret, tracker)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for an ended session")
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "session_expired") {
		t.Fatalf("expected session_expired code, got %s", rec.Body.String())
	}
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(auth.PermSystemBackup)(http.HandlerFunc(noContent))

	cases := []struct {
		name   string
		role   string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"admin", auth.RoleAdmin, http.StatusForbidden},
		{"master", auth.RoleMaster, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.role != "" {
				ctx := requestctx.WithSession(req.Context(), session.Session{ID: "s1", Username: tc.name, Role: tc.role})
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
