package hrhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Service.ListCandidates(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, candidates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetCandidate(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.CandidateInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	c, err := h.Service.CreateCandidate(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, c, reqID)
}

func (h *Handler) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.CandidateInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	c, err := h.Service.UpdateCandidate(r.Context(), sess, chi.URLParam(r, "candidateID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, c, reqID)
}

func (h *Handler) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteCandidate(r.Context(), sess, chi.URLParam(r, "candidateID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleAttachCandidateDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload documents.Upload
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	doc, err := h.Service.AttachCandidateDocument(r.Context(), sess, chi.URLParam(r, "candidateID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, doc, reqID)
}

func (h *Handler) handleRemoveCandidateDocument(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	docID, ok := shared.DocumentID(w, r, reqID)
	if !ok {
		return
	}
	if err := h.Service.RemoveCandidateDocument(r.Context(), sess, chi.URLParam(r, "candidateID"), docID); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListVacancies(w http.ResponseWriter, r *http.Request) {
	vacancies, err := h.Service.ListVacancies(r.Context())
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, vacancies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateVacancy(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.VacancyInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	v, err := h.Service.CreateVacancy(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, v, reqID)
}

func (h *Handler) handleUpdateVacancy(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.VacancyInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	v, err := h.Service.UpdateVacancy(r.Context(), sess, chi.URLParam(r, "vacancyID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, v, reqID)
}

func (h *Handler) handleDeleteVacancy(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteVacancy(r.Context(), sess, chi.URLParam(r, "vacancyID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}
