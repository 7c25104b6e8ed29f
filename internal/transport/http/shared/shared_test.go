package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/platform/kv"
)

func TestWriteErrorStatus(t *testing.T) {
	verr := &fields.ValidationError{}
	verr.Add("cpf", "invalid")
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", verr, http.StatusBadRequest, "validation_error"},
		{"not found", fmt.Errorf("load: %w", hr.ErrEmployeeNotFound), http.StatusNotFound, "not_found"},
		{"duplicate", hr.ErrDuplicateTaxID, http.StatusConflict, "duplicate_tax_id"},
		{"enrolled", hr.ErrAlreadyEnrolled, http.StatusConflict, "already_enrolled"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"master", auth.ErrMasterRequired, http.StatusForbidden, "master_required"},
		{"document", documents.ErrUnsupported, http.StatusBadRequest, "invalid_document"},
		{"document size", documents.ErrTooLarge, http.StatusRequestEntityTooLarge, "document_too_large"},
		{"quota", fmt.Errorf("set: %w", kv.ErrQuotaExceeded), http.StatusInsufficientStorage, "storage_full"},
		{"corrupt", records.ErrCorrupt, http.StatusInternalServerError, "corrupt_data"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "req", tc.err)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, body.Error.Code)
			}
		})
	}
}

func TestQueryDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2024-05-01&to=nope", nil)
	verr := &fields.ValidationError{}
	if got := QueryDate(req, "from", verr); got != "2024-05-01" {
		t.Fatalf("unexpected from %q", got)
	}
	if got := QueryDate(req, "to", verr); got != "" {
		t.Fatalf("unexpected to %q", got)
	}
	if got := QueryDate(req, "missing", verr); got != "" {
		t.Fatalf("unexpected missing %q", got)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Field != "to" {
		t.Fatalf("unexpected issues %+v", verr.Issues)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 20 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil)
	p = ParsePagination(req, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	rec := httptest.NewRecorder()
	if !DecodeJSON(rec, req, "", &dst) || dst.Name != "Ana" {
		t.Fatalf("expected decode to succeed, got %+v", dst)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	rec = httptest.NewRecorder()
	if DecodeJSON(rec, req, "", &dst) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
