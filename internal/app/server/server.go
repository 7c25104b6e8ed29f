package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/hr"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/platform/backup"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/jobs"
	"hrdesk/internal/platform/kv"
	"hrdesk/internal/platform/logging"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	audithandler "hrdesk/internal/transport/http/handlers/audit"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	hrhandler "hrdesk/internal/transport/http/handlers/hr"
	reportshandler "hrdesk/internal/transport/http/handlers/reports"
	systemhandler "hrdesk/internal/transport/http/handlers/system"
	toolshandler "hrdesk/internal/transport/http/handlers/tools"
	"hrdesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Backend kv.Backend
	Store   *records.Store
	Tracker *session.Tracker
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	stopJobs context.CancelFunc
}

// New opens the store, seeds operators when configured and wires every
// handler. Scheduled jobs start immediately; Close stops them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		slog.Warn("JWT_SECRET not set; tokens will not survive a restart")
	}

	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store := records.NewStore(backend, records.WithLogger(slog.Default()))

	authSvc := auth.NewService(store)
	seed := auth.DefaultSeed(cfg.SeedAdminPassword, cfg.SeedMasterPassword)
	if cfg.RunSeed {
		seeded, err := authSvc.SeedDefaultUsers(ctx, seed)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("seed users: %w", err)
		}
		if seeded {
			slog.Info("default operators seeded")
		}
	}

	collector := metrics.New()
	tracker := session.NewTracker(cfg.SessionWarnAfter, cfg.SessionTimeout,
		session.OnWarn(func(s session.Session) {
			slog.Info("session idle", "username", s.Username, "sessionId", s.ID)
		}),
		session.OnExpire(func(s session.Session) {
			collector.RecordSessionExpired()
			slog.Info("session expired", "username", s.Username, "sessionId", s.ID)
		}),
	)

	auditSvc := audit.New(store, cfg.AuditRetain)
	hrSvc := hr.NewService(store, authSvc, hr.WithAudit(auditSvc))
	reportsSvc := reports.NewService(store)

	sink, err := backup.OpenSink(ctx, cfg)
	if err != nil {
		tracker.Close()
		_ = backend.Close()
		return nil, fmt.Errorf("open backup sink: %w", err)
	}
	backupSvc := backup.NewService(store, sink)
	jobsSvc := jobs.New(jobs.Schedule{
		Type:     jobs.JobBackup,
		Interval: cfg.BackupInterval,
		Job: func(ctx context.Context) (any, error) {
			return backupSvc.Run(ctx)
		},
	})
	jobCtx, stopJobs := context.WithCancel(context.Background())
	jobsSvc.Start(jobCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, tracker))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := backend.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			snap := collector.Snapshot()
			snap["activeSessions"] = tracker.Len()
			api.Success(w, snap, middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.StrictRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authSvc, tracker, cfg.JWTSecret, cfg.TokenTTL, collector)
		authHandler.RegisterRoutes(r)

		hrHandler := hrhandler.NewHandler(hrSvc)
		hrHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(store, reportsSvc, hrSvc)
		reportsHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(auditSvc)
		auditHandler.RegisterRoutes(r)

		toolsHandler := toolshandler.NewHandler()
		toolsHandler.RegisterRoutes(r)

		systemHandler := systemhandler.NewHandler(store, authSvc, backupSvc, jobsSvc, seed)
		systemHandler.RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:   cfg,
		Backend:  backend,
		Store:    store,
		Tracker:  tracker,
		Jobs:     jobsSvc,
		Metrics:  collector,
		Router:   router,
		stopJobs: stopJobs,
	}, nil
}

// Close stops scheduled jobs, drops live sessions and closes the store.
func (a *App) Close() error {
	a.stopJobs()
	a.Jobs.Wait()
	a.Tracker.Close()
	return a.Backend.Close()
}

// Run loads config, serves until SIGINT or SIGTERM and then shuts down.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stdout, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrdesk listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
