package hrhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type enrollRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleListTrainings(w http.ResponseWriter, r *http.Request) {
	trainings, err := h.Service.ListTrainings(r.Context())
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, trainings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTraining(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.TrainingInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	t, err := h.Service.CreateTraining(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, t, reqID)
}

func (h *Handler) handleUpdateTraining(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.TrainingInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	t, err := h.Service.UpdateTraining(r.Context(), sess, chi.URLParam(r, "trainingID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleDeleteTraining(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteTraining(r.Context(), sess, chi.URLParam(r, "trainingID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload enrollRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	verr := &fields.ValidationError{}
	if strings.TrimSpace(payload.EmployeeID) == "" {
		verr.Add("employeeId", "is required")
	}
	if shared.Reject(w, reqID, verr) {
		return
	}
	t, err := h.Service.Enroll(r.Context(), sess, chi.URLParam(r, "trainingID"), strings.TrimSpace(payload.EmployeeID))
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	t, err := h.Service.Unenroll(r.Context(), sess, chi.URLParam(r, "trainingID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleListPerformances(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.ListPerformances(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		shared.WriteError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePerformance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	var payload hr.PerformanceInput
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	p, err := h.Service.CreatePerformance(r.Context(), sess, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Created(w, p, reqID)
}

func (h *Handler) handleDeletePerformance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeletePerformance(r.Context(), sess, chi.URLParam(r, "performanceID")); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}
