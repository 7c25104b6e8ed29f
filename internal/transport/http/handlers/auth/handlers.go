package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Auth     *auth.Service
	Tracker  *session.Tracker
	Secret   string
	TokenTTL time.Duration
	Metrics  *metrics.Collector
	Checker  *fields.Checker
}

func NewHandler(authSvc *auth.Service, tracker *session.Tracker, secret string, ttl time.Duration, collector *metrics.Collector) *Handler {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Handler{
		Auth:     authSvc,
		Tracker:  tracker,
		Secret:   secret,
		TokenTTL: ttl,
		Metrics:  collector,
		Checker:  fields.NewChecker(nil),
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Mode     string `json:"mode"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=4,max=128"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	User    auth.Identity   `json:"user"`
	Session session.Session `json:"session"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Post("/logout", h.HandleLogout)
		r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
		r.With(middleware.RequireAuth).Post("/password", h.HandleChangePassword)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	if err := h.Checker.Struct(payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}

	mode := auth.ParseMode(payload.Mode)
	identity, err := h.Auth.Authenticate(r.Context(), payload.Username, payload.Password, mode)
	if err != nil {
		h.recordLogin(false)
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrMasterRequired) {
			slog.Info("login rejected", "username", payload.Username, "mode", payload.Mode, "requestId", reqID)
		}
		shared.WriteError(w, reqID, err)
		return
	}

	sess := h.Tracker.Start(identity.Username, identity.Role, mode == auth.ModeMaster)
	token, err := auth.GenerateToken(h.Secret, auth.Claims{Username: identity.Username, Role: identity.Role, SessionID: sess.ID}, h.TokenTTL)
	if err != nil {
		h.Tracker.End(sess.ID)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	h.recordLogin(true)
	api.Success(w, loginResponse{Token: token, User: identity, Session: sess}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	h.Tracker.End(sess.ID)
	api.NoContent(w)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	api.Success(w, map[string]any{
		"user":    auth.Identity{Username: sess.Username, Role: sess.Role},
		"session": sess,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())
	var payload passwordRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	if err := h.Checker.Struct(payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	if err := h.Auth.VerifyOwnPassword(r.Context(), sess.Username, payload.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusForbidden, "password_rejected", "password confirmation failed", reqID)
			return
		}
		shared.WriteError(w, reqID, err)
		return
	}
	if err := h.Auth.SetPassword(r.Context(), sess.Username, payload.NewPassword); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) recordLogin(ok bool) {
	if h.Metrics != nil {
		h.Metrics.RecordLogin(ok)
	}
}
