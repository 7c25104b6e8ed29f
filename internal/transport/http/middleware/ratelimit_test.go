package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrdesk/internal/domain/session"
	"hrdesk/internal/requestctx"
)

func sessionCtx(username string) context.Context {
	return requestctx.WithSession(context.Background(), session.Session{ID: "s-" + username, Username: username, Role: "admin"})
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRateLimitUsesSessionKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(noContent))
	ctx := sessionCtx("admin")

	first := httptest.NewRequest(http.MethodPost, "/api/v1/system/backups", nil).WithContext(ctx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/system/backups", nil).WithContext(ctx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by session key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(noContent))

	first := httptest.NewRequest(http.MethodGet, "/api/v1/tools/tax-id", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/tools/tax-id", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}
	if secondRec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(http.HandlerFunc(noContent))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
	time.Sleep(50 * time.Millisecond)
	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected request after window reset to pass, got %d", code)
	}
}

func TestSensitiveLoginLimitedPerUsername(t *testing.T) {
	limited := StrictRateLimit(4, time.Minute)(http.HandlerFunc(noContent))

	login := func(addr, username string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"`+username+`","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := login("192.0.2.1:1", "admin"); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := login("192.0.2.2:1", "admin"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second login for same username to be throttled, got %d", code)
	}
}

func TestStrictRateLimitScope(t *testing.T) {
	limited := StrictRateLimit(4, time.Minute)(http.HandlerFunc(noContent))

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read route request %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	ctx := sessionCtx("master")
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/employees/emp_1", nil).WithContext(ctx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected sensitive request %d to pass, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected third sensitive request to be throttled, got %d", rec.Code)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   routeClass
	}{
		{http.MethodPost, "/api/v1/auth/login", routeLogin},
		{http.MethodPost, "/api/v1/system/restore/", routeDestructive},
		{http.MethodPost, "/api/v1/reports/import", routeDestructive},
		{http.MethodDelete, "/api/v1/employees/emp_1", routeDestructive},
		{http.MethodDelete, "/api/v1/employees/emp_1/documents/12", routeOpen},
		{http.MethodDelete, "/api/v1/employees/", routeOpen},
		{http.MethodGet, "/api/v1/system/backups", routeOpen},
		{http.MethodPut, "/api/v1/employees/emp_1", routeOpen},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := classify(req); got != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, got)
		}
	}
}

func TestLoginBodyStillReachesHandler(t *testing.T) {
	var seen string
	limited := StrictRateLimit(40, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		seen = body.Username
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"admin","password":"1234"}`))
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "admin" {
		t.Fatalf("expected body to reach handler, got %d and %q", rec.Code, seen)
	}
}

func TestLimiterWindowWithClock(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	l := newLimiter(2, time.Minute, clientAddr)
	l.now = func() time.Time { return now }

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
		req.RemoteAddr = "192.0.2.30:1"
		rec := httptest.NewRecorder()
		l.allow(rec, req)
		return rec
	}
	if rec := hit(); rec.Header().Get("X-RateLimit-Remaining") != "1" || rec.Header().Get("X-RateLimit-Reset") != "60" {
		t.Fatalf("unexpected headers %v", rec.Header())
	}
	hit()
	if rec := hit(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected third hit to be throttled, got %d", rec.Code)
	}
	now = now.Add(61 * time.Second)
	if rec := hit(); rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("expected a fresh window, got %d %v", rec.Code, rec.Header())
	}
}
