package systemhandler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/platform/backup"
	"hrdesk/internal/platform/kv"
	"hrdesk/internal/requestctx"
)

func TestRestoreWithoutOperatorsReseedsThem(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory(0)
	store := records.NewStore(backend, records.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := backend.Set(ctx, records.Employees, `[{"id":"emp_1","name":"Ana"}]`); err != nil {
		t.Fatalf("seed employees: %v", err)
	}
	sink, err := backup.NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	backupSvc := backup.NewService(store, sink)
	if _, err := backupSvc.Run(ctx); err != nil {
		t.Fatalf("backup: %v", err)
	}

	authSvc := auth.NewService(store)
	seed := auth.DefaultSeed("1234", "master123")
	if _, err := authSvc.SeedDefaultUsers(ctx, seed); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	h := NewHandler(store, authSvc, backupSvc, nil, seed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/system/restore", bytes.NewBufferString(`{"password":"1234"}`))
	req = req.WithContext(requestctx.WithSession(req.Context(), session.Session{ID: "s1", Username: "admin", Role: auth.RoleAdmin}))
	rec := httptest.NewRecorder()
	h.handleRestore(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := authSvc.Authenticate(ctx, "admin", "1234", auth.ModeStandard); err != nil {
		t.Fatalf("admin login after restore: %v", err)
	}
	if _, err := authSvc.Authenticate(ctx, "master", "master123", auth.ModeMaster); err != nil {
		t.Fatalf("master login after restore: %v", err)
	}
	employees, err := store.Employees(ctx)
	if err != nil {
		t.Fatalf("employees: %v", err)
	}
	if len(employees) != 1 || employees[0].Name != "Ana" {
		t.Fatalf("expected restored employee, got %+v", employees)
	}
}
