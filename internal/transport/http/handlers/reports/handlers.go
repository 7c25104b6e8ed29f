package reportshandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/platform/export"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

const maxImportBytes = 10 << 20

type Handler struct {
	Store   *records.Store
	Reports *reports.Service
	HR      *hr.Service
}

func NewHandler(store *records.Store, reportsSvc *reports.Service, hrSvc *hr.Service) *Handler {
	return &Handler{Store: store, Reports: reportsSvc, HR: hrSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermReportsRead))
			r.Get("/dashboard", h.handleDashboard)
			r.Get("/summary", h.handleSummary)
			r.Get("/lateness", h.handleLateness)
			r.Get("/export.xlsx", h.handleWorkbook)
			r.Get("/summary.pdf", h.handleSummaryPDF)
		})
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/import", h.handleImport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.Reports.Dashboard(r.Context())
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, data, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.Summary(r.Context())
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

// handleLateness reports the week containing ?ref=YYYY-MM-DD, or the current
// week without it.
func (h *Handler) handleLateness(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	verr := &fields.ValidationError{}
	ref := h.Store.Now()
	if raw := shared.QueryDate(r, "ref", verr); raw != "" {
		parsed, err := fields.ParseDate(raw, ref.Location())
		if err == nil {
			ref = parsed.Add(12 * time.Hour)
		}
	}
	if shared.Reject(w, reqID, verr) {
		return
	}
	rows, err := h.Reports.WeeklyLateness(r.Context(), ref)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	start, end := reports.WeekRange(ref)
	api.Success(w, map[string]any{
		"weekStart": start.Format(time.RFC3339),
		"weekEnd":   end.Format(time.RFC3339),
		"rows":      rows,
	}, reqID)
}

func (h *Handler) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	now := h.Store.Now()
	report, err := export.Collect(r.Context(), h.Store, now)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	buf, err := export.Workbook(report)
	if err != nil {
		slog.Error("workbook render failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build workbook", reqID)
		return
	}
	attachment(w, export.XLSXContentType, export.FileName(now, ".xlsx"))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("workbook write failed", "err", err)
	}
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	now := h.Store.Now()
	report, err := export.Collect(r.Context(), h.Store, now)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	data, err := export.SummaryPDF(report)
	if err != nil {
		slog.Error("pdf render failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build pdf", reqID)
		return
	}
	attachment(w, export.PDFContentType, export.FileName(now, ".pdf"))
	if _, err := w.Write(data); err != nil {
		slog.Warn("pdf write failed", "err", err)
	}
}

// handleImport takes a multipart "file" field holding an .xlsx or .xls
// employee sheet.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "expected a multipart form with a file field", reqID)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "file field is required", reqID)
		return
	}
	defer file.Close()

	rows, err := export.ReadRows(file, header.Filename)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_spreadsheet", err.Error(), reqID)
		return
	}
	inputs, err := export.EmployeeRows(rows)
	if err != nil {
		code := "invalid_spreadsheet"
		if errors.Is(err, export.ErrMissingColumns) {
			code = "missing_columns"
		}
		api.Fail(w, http.StatusBadRequest, code, err.Error(), reqID)
		return
	}
	result, err := h.HR.ImportEmployees(r.Context(), sess, inputs)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, result, reqID)
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
