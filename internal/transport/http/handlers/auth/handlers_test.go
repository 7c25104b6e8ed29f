package authhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/platform/kv"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/requestctx"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store := records.NewStore(kv.NewMemory(0), records.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	svc := auth.NewService(store)
	if _, err := svc.SeedDefaultUsers(context.Background(), auth.DefaultSeed("1234", "master123")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tracker := session.NewTracker(time.Minute, 2*time.Minute)
	t.Cleanup(tracker.Close)
	return NewHandler(svc, tracker, "secret", time.Hour, metrics.New())
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleLoginIssuesTokenForSession(t *testing.T) {
	h := newHandler(t)
	rec := postJSON(h.HandleLogin, `{"username":"admin","password":"1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data loginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := auth.ParseToken("secret", body.Data.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.SessionID != body.Data.Session.ID || claims.Username != "admin" {
		t.Fatalf("claims do not match session: %+v vs %+v", claims, body.Data.Session)
	}
	if _, ok := h.Tracker.Get(claims.SessionID); !ok {
		t.Fatal("expected tracked session")
	}
	if h.Metrics.Snapshot()["loginSuccessTotal"] != uint64(1) {
		t.Fatal("expected login success metric")
	}
}

func TestHandleLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, status: http.StatusBadRequest},
		{name: "wrong password", body: `{"username":"admin","password":"x"}`, status: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"ghost","password":"1234"}`, status: http.StatusUnauthorized},
		{name: "admin in master mode", body: `{"username":"admin","password":"1234","mode":"master"}`, status: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(t)
			rec := postJSON(h.HandleLogin, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if h.Tracker.Len() != 0 {
				t.Fatal("no session should start on failure")
			}
		})
	}
}

func TestHandleChangePassword(t *testing.T) {
	h := newHandler(t)
	sess := h.Tracker.Start("admin", auth.RoleAdmin, false)

	send := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password", bytes.NewBufferString(body))
		req = req.WithContext(requestctx.WithSession(req.Context(), sess))
		rec := httptest.NewRecorder()
		h.HandleChangePassword(rec, req)
		return rec.Code
	}
	if code := send(`{"currentPassword":"bad","newPassword":"s3cret"}`); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if code := send(`{"currentPassword":"master123","newPassword":"s3cret"}`); code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user's password, got %d", code)
	}
	if rec := postJSON(h.HandleLogin, `{"username":"admin","password":"1234"}`); rec.Code != http.StatusOK {
		t.Fatalf("password should be unchanged, login got %d", rec.Code)
	}
	if code := send(`{"currentPassword":"1234","newPassword":"ab"}`); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", code)
	}
	if code := send(`{"currentPassword":"1234","newPassword":"s3cret"}`); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if rec := postJSON(h.HandleLogin, `{"username":"admin","password":"s3cret"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", rec.Code)
	}
}
