package hrhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

func (h *Handler) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	verr := &fields.ValidationError{}
	filter := hr.TimeEntryFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		From:       shared.QueryDate(r, "from", verr),
		To:         shared.QueryDate(r, "to", verr),
	}
	if !fields.ValidDateRange(filter.From, filter.To) {
		verr.Add("to", "must be on or after from")
	}
	if shared.Reject(w, reqID, verr) {
		return
	}
	entries, err := h.Service.ListTimeEntries(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, entries, reqID)
}

func (h *Handler) handleCreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.TimeEntryInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	entry, err := h.Service.CreateTimeEntry(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, entry, reqID)
}

func (h *Handler) handleDeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteTimeEntry(r.Context(), sess, chi.URLParam(r, "entryID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListProcesses(w http.ResponseWriter, r *http.Request) {
	processes, err := h.Service.ListProcesses(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, processes, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateProcess(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.ProcessInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	p, err := h.Service.CreateProcess(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, p, reqID)
}

func (h *Handler) handleDeleteProcess(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteProcess(r.Context(), sess, chi.URLParam(r, "processID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleAttachProcessDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload documents.Upload
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	doc, err := h.Service.AttachProcessDocument(r.Context(), sess, chi.URLParam(r, "processID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, doc, reqID)
}

func (h *Handler) handleRemoveProcessDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	docID, ok := shared.DocumentID(w, r, reqID)
	if !ok {
		return
	}
	if err := h.Service.RemoveProcessDocument(r.Context(), sess, chi.URLParam(r, "processID"), docID); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}
