package shared

import (
	"net/http"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/transport/http/api"
)

// FailValidation writes a 400 listing every failed field.
func FailValidation(w http.ResponseWriter, requestID string, issues []fields.Issue) {
	if issues == nil {
		issues = []fields.Issue{}
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

// Reject writes the collected issues and reports whether there were any.
func Reject(w http.ResponseWriter, requestID string, verr *fields.ValidationError) bool {
	if verr.Err() == nil {
		return false
	}
	FailValidation(w, requestID, verr.Issues)
	return true
}
