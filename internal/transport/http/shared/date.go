package shared

import (
	"net/http"
	"strings"

	"hrdesk/internal/domain/fields"
)

// QueryDate reads an optional YYYY-MM-DD query parameter. An unparseable value
// is recorded on verr and returned as "".
func QueryDate(r *http.Request, name string, verr *fields.ValidationError) string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return ""
	}
	parsed, err := fields.ParseDate(raw, nil)
	if err != nil {
		verr.Add(name, "must be a valid date in YYYY-MM-DD format")
		return ""
	}
	return parsed.Format(fields.DateLayout)
}
