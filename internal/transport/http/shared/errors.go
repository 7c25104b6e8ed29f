package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/platform/kv"
	"hrdesk/internal/transport/http/api"
)

var notFound = []error{
	hr.ErrEmployeeNotFound,
	hr.ErrCandidateNotFound,
	hr.ErrVacancyNotFound,
	hr.ErrTrainingNotFound,
	hr.ErrPerformanceNotFound,
	hr.ErrTimeEntryNotFound,
	hr.ErrProcessNotFound,
	hr.ErrDocumentNotFound,
	hr.ErrNotEnrolled,
	records.ErrNotFound,
}

// WriteError maps a service error onto the response envelope.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	var verr *fields.ValidationError
	if errors.As(err, &verr) {
		FailValidation(w, requestID, verr.Issues)
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			api.Fail(w, http.StatusNotFound, "not_found", target.Error(), requestID)
			return
		}
	}

	switch {
	case errors.Is(err, hr.ErrDuplicateTaxID):
		api.Fail(w, http.StatusConflict, "duplicate_tax_id", err.Error(), requestID)
	case errors.Is(err, hr.ErrAlreadyEnrolled):
		api.Fail(w, http.StatusConflict, "already_enrolled", err.Error(), requestID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	case errors.Is(err, auth.ErrMasterRequired):
		api.Fail(w, http.StatusForbidden, "master_required", "master credentials required", requestID)
	case errors.Is(err, session.ErrExpired):
		api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired", requestID)
	case errors.Is(err, documents.ErrTooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "document_too_large", err.Error(), requestID)
	case errors.Is(err, documents.ErrEmpty), errors.Is(err, documents.ErrMalformed), errors.Is(err, documents.ErrUnsupported):
		api.Fail(w, http.StatusBadRequest, "invalid_document", err.Error(), requestID)
	case errors.Is(err, kv.ErrQuotaExceeded):
		api.Fail(w, http.StatusInsufficientStorage, "storage_full", "storage quota exceeded", requestID)
	case errors.Is(err, records.ErrCorrupt):
		slog.Error("corrupt collection", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "corrupt_data", "stored data is corrupt; restore a backup", requestID)
	default:
		slog.Error("request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
