package systemhandler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/platform/backup"
	"hrdesk/internal/platform/jobs"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Store  *records.Store
	Auth   *auth.Service
	Backup *backup.Service
	Jobs   *jobs.Service
	Seed   []auth.SeedUser
}

func NewHandler(store *records.Store, authSvc *auth.Service, backupSvc *backup.Service, jobsSvc *jobs.Service, seed []auth.SeedUser) *Handler {
	return &Handler{Store: store, Auth: authSvc, Backup: backupSvc, Jobs: jobsSvc, Seed: seed}
}

type restoreRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type resetRequest struct {
	Password string `json:"password"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermSystemBackup))
			r.Get("/backups", h.handleListBackups)
			r.Post("/backups", h.handleRunBackup)
			r.Post("/restore", h.handleRestore)
			r.Get("/jobs", h.handleJobRuns)
		})
		r.With(middleware.RequirePermission(auth.PermSystemReset)).Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	names, err := h.Backup.Sink.List(r.Context())
	if err != nil {
		slog.Error("backup list failed", "err", err)
		api.Fail(w, http.StatusBadGateway, "backup_list_failed", "failed to list backups", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"sink": h.Backup.Sink.String(), "backups": names}, middleware.GetRequestID(r.Context()))
}

// handleRunBackup runs the backup synchronously and records the run with the
// scheduled ones.
func (h *Handler) handleRunBackup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	out, err := h.Jobs.RunNow(r.Context(), jobs.JobBackup, func(ctx context.Context) (any, error) {
		return h.Backup.Run(ctx)
	})
	if err != nil {
		slog.Error("backup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "backup_failed", "backup failed", reqID)
		return
	}
	api.Created(w, out, reqID)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload restoreRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	if !h.confirm(w, r, payload.Password) {
		return
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		latest, err := h.Backup.Latest(r.Context())
		if err != nil {
			shared.WriteError(w, reqID, err)
			return
		}
		if latest == "" {
			api.Fail(w, http.StatusNotFound, "not_found", "no backups available", reqID)
			return
		}
		name = latest
	}
	ctx, unlock := h.Store.Lock(r.Context())
	defer unlock()
	snap, err := h.Backup.RestoreFrom(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		api.Fail(w, http.StatusNotFound, "not_found", "backup not found", reqID)
		return
	}
	if errors.Is(err, backup.ErrUnsupportedVersion) {
		api.Fail(w, http.StatusUnprocessableEntity, "unsupported_backup", err.Error(), reqID)
		return
	}
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	// A snapshot without operators would lock everyone out.
	if _, err := h.Auth.SeedDefaultUsers(ctx, h.Seed); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	slog.Info("backup restored", "name", name, "collections", len(snap.Collections), "requestId", reqID)
	api.Success(w, map[string]any{"name": name, "createdAt": snap.CreatedAt, "collections": len(snap.Collections)}, reqID)
}

// handleReset wipes every collection and seeds the default operators again so
// the instance stays reachable.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resetRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	if !h.confirm(w, r, payload.Password) {
		return
	}
	ctx, unlock := h.Store.Lock(r.Context())
	defer unlock()
	if err := h.Store.Clear(ctx); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	if _, err := h.Auth.SeedDefaultUsers(ctx, h.Seed); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	sess, _ := middleware.GetSession(r.Context())
	slog.Warn("store reset", "actor", sess.Actor(), "requestId", reqID)
	api.NoContent(w)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Jobs.Runs(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, password string) bool {
	reqID := middleware.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())
	err := h.Auth.ConfirmPassword(r.Context(), sess.Username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusForbidden, "password_rejected", "password confirmation failed", reqID)
		return false
	}
	if err != nil {
		shared.WriteError(w, reqID, err)
		return false
	}
	return true
}
