package hrhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
)

type Handler struct {
	Service *hr.Service
}

func NewHandler(service *hr.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.With(read).Get("/departments", h.handleDepartments)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Put("/", h.handleUpdateEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesDelete)).Delete("/", h.handleDeleteEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/documents", h.handleAttachEmployeeDocument)
			r.With(read).Get("/documents/{documentID}", h.handleGetEmployeeDocument)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Delete("/documents/{documentID}", h.handleRemoveEmployeeDocument)
		})
	})

	r.Route("/candidates", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermRecruitment))
		r.Get("/", h.handleListCandidates)
		r.Post("/", h.handleCreateCandidate)
		r.Route("/{candidateID}", func(r chi.Router) {
			r.Get("/", h.handleGetCandidate)
			r.Put("/", h.handleUpdateCandidate)
			r.Delete("/", h.handleDeleteCandidate)
			r.Post("/documents", h.handleAttachCandidateDocument)
			r.Delete("/documents/{documentID}", h.handleRemoveCandidateDocument)
		})
	})

	r.Route("/vacancies", func(r chi.Router) {
		r.With(read).Get("/", h.handleListVacancies)
		r.With(middleware.RequirePermission(auth.PermRecruitment)).Post("/", h.handleCreateVacancy)
		r.With(middleware.RequirePermission(auth.PermRecruitment)).Put("/{vacancyID}", h.handleUpdateVacancy)
		r.With(middleware.RequirePermission(auth.PermRecruitment)).Delete("/{vacancyID}", h.handleDeleteVacancy)
	})

	r.Route("/trainings", func(r chi.Router) {
		r.With(read).Get("/", h.handleListTrainings)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermTrainings))
			r.Post("/", h.handleCreateTraining)
			r.Put("/{trainingID}", h.handleUpdateTraining)
			r.Delete("/{trainingID}", h.handleDeleteTraining)
			r.Post("/{trainingID}/enrollments", h.handleEnroll)
			r.Delete("/{trainingID}/enrollments/{employeeID}", h.handleUnenroll)
		})
	})

	r.Route("/performances", func(r chi.Router) {
		r.With(read).Get("/", h.handleListPerformances)
		r.With(middleware.RequirePermission(auth.PermPerformance)).Post("/", h.handleCreatePerformance)
		r.With(middleware.RequirePermission(auth.PermPerformance)).Delete("/{performanceID}", h.handleDeletePerformance)
	})

	r.Route("/time-entries", func(r chi.Router) {
		r.With(read).Get("/", h.handleListTimeEntries)
		r.With(middleware.RequirePermission(auth.PermTimeTracking)).Post("/", h.handleCreateTimeEntry)
		r.With(middleware.RequirePermission(auth.PermTimeTracking)).Delete("/{entryID}", h.handleDeleteTimeEntry)
	})

	r.Route("/processes", func(r chi.Router) {
		r.With(read).Get("/", h.handleListProcesses)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermProcesses))
			r.Post("/", h.handleCreateProcess)
			r.Delete("/{processID}", h.handleDeleteProcess)
			r.Post("/{processID}/documents", h.handleAttachProcessDocument)
			r.Delete("/{processID}/documents/{documentID}", h.handleRemoveProcessDocument)
		})
	})
}

// actor returns the session placed on the request by the auth middleware.
// Routes are all behind RequirePermission, so a missing session is a wiring
// bug and is reported as 401.
func actor(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
	}
	return sess, ok
}
