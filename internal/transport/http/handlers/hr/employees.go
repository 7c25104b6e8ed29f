package hrhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type deleteRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := hr.EmployeeFilter{
		Query:      q.Get("q"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
	}
	employees, err := h.Service.ListEmployees(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.Departments(r.Context())
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.EmployeeInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	emp, err := h.Service.CreateEmployee(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.EmployeeInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	emp, err := h.Service.UpdateEmployee(r.Context(), sess, chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, emp, reqID)
}

// handleDeleteEmployee needs the operator's password in the body. A wrong
// password is 403 rather than 401 so the client keeps its session.
func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload deleteRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	err := h.Service.DeleteEmployee(r.Context(), sess, chi.URLParam(r, "employeeID"), payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusForbidden, "password_rejected", "password confirmation failed", reqID)
		return
	}
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleAttachEmployeeDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload documents.Upload
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	doc, err := h.Service.AttachEmployeeDocument(r.Context(), sess, chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, doc, reqID)
}

func (h *Handler) handleGetEmployeeDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	docID, ok := shared.DocumentID(w, r, reqID)
	if !ok {
		return
	}
	doc, err := h.Service.EmployeeDocument(r.Context(), chi.URLParam(r, "employeeID"), docID)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleRemoveEmployeeDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	docID, ok := shared.DocumentID(w, r, reqID)
	if !ok {
		return
	}
	if err := h.Service.RemoveEmployeeDocument(r.Context(), sess, chi.URLParam(r, "employeeID"), docID); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}
