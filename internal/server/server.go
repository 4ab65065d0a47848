// Package server is the composition root: it builds storage, services and
// handlers from the configuration and serves them over HTTP.
//
// DEPENDENCY CHAIN:
//
//	config → KeyValueStore (sqlite | memory) → LocalStore
//	       → SessionController (MealPlanner, ShoppingListGenerator, familykey)
//	       → handlers → chi router
//
// Nothing outside this package knows which storage backend is in use.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/family-meal-planner/internal/config"
	"github.com/sakif/family-meal-planner/internal/familykey"
	"github.com/sakif/family-meal-planner/internal/handler"
	"github.com/sakif/family-meal-planner/internal/localstore"
	"github.com/sakif/family-meal-planner/internal/middleware"
	"github.com/sakif/family-meal-planner/internal/repository"
	"github.com/sakif/family-meal-planner/internal/repository/memory"
	sqliteRepo "github.com/sakif/family-meal-planner/internal/repository/sqlite"
	"github.com/sakif/family-meal-planner/internal/scheduler"
	"github.com/sakif/family-meal-planner/internal/service"
)

// refreshTimeout bounds one run of the daily plan refresh.
const refreshTimeout = time.Minute

// Server owns the router and every long-lived resource behind it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger

	sessions  *service.SessionController
	scheduler *scheduler.Scheduler // nil when the daily refresh is off
	sentry    bool

	closeStore func() error
}

// New wires the application and restores the persisted session, if any.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	kv, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:     chi.NewRouter(),
		config:     cfg,
		logger:     logger,
		closeStore: closeStore,
	}

	store := localstore.New(kv, logger)
	planner := service.NewMealPlanner(service.NewRandomSelector(nil), cfg.PlanLatency, logger)
	shopping := service.NewShoppingListGenerator(service.StaticShoppingSource{}, cfg.ShoppingLatency, logger)
	s.sessions = service.NewSessionController(store, familykey.New(nil), planner, shopping, logger)

	st, err := s.sessions.Restore(context.Background())
	if err != nil {
		closeStore()
		return nil, err
	}
	logger.Info("device state restored", slog.String("phase", string(st.Phase)))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			logger.Error("sentry init failed, error reporting disabled", slog.String("error", err.Error()))
		} else {
			s.sentry = true
		}
	}

	if cfg.PlanRefreshAt != "" {
		s.scheduler = scheduler.New(time.Local, logger)
		if _, err := s.scheduler.ScheduleDaily("meal-plan-refresh", cfg.PlanRefreshAt, s.refreshPlan); err != nil {
			s.Close()
			return nil, fmt.Errorf("scheduling plan refresh: %w", err)
		}
	}

	s.setupRoutes()
	return s, nil
}

func openStore(cfg *config.Config) (repository.KeyValueStore, func() error, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(), func() error { return nil }, nil
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return db, db.Close, nil
}

// setupRoutes mounts middleware and the API.
//
// MIDDLEWARE ORDER:
// RequestID and RealIP first so the logger sees both, then the logger, then
// Recoverer. Sentry sits inside Recoverer: it reports a panic and re-panics
// so Recoverer still turns it into a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	if s.sentry {
		s.router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	sessionHandler := handler.NewSessionHandler(s.sessions, s.logger)
	foodHandler := handler.NewFoodHandler(s.sessions, s.logger)
	planHandler := handler.NewPlanHandler(s.sessions, s.logger)
	shoppingHandler := handler.NewShoppingHandler(s.sessions, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/session", sessionHandler.HandleState)
		r.Post("/onboarding/mode", sessionHandler.HandleSelectMode)
		r.Post("/onboarding/back", sessionHandler.HandleBack)
		r.Post("/onboarding", sessionHandler.HandleComplete)
		r.Post("/logout", sessionHandler.HandleLogout)
		r.Get("/avatars", sessionHandler.HandleAvatars)
		r.Get("/family/members", sessionHandler.HandleMembers)

		r.Route("/foods", func(r chi.Router) {
			r.Get("/", foodHandler.HandleList)
			r.Post("/", foodHandler.HandleCreate)
			r.Get("/contributors", foodHandler.HandleContributors)
			r.Patch("/{id}", foodHandler.HandleUpdate)
			r.Delete("/{id}", foodHandler.HandleDelete)
		})

		r.Get("/plan", planHandler.HandleGet)
		r.Post("/plan", planHandler.HandleGenerate)
		r.Post("/plan/feedback", planHandler.HandleFeedback)

		r.Route("/shopping", func(r chi.Router) {
			r.Get("/", shoppingHandler.HandleGet)
			r.Post("/", shoppingHandler.HandleOpen)
			r.Delete("/", shoppingHandler.HandleClose)
			r.Post("/items/{id}/toggle", shoppingHandler.HandleToggle)
			r.Post("/reset", shoppingHandler.HandleReset)
			r.Post("/check-all", shoppingHandler.HandleCheckAll)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) refreshPlan() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.sessions.RefreshPlan(ctx, time.Now()); err != nil {
		s.logger.Error("daily plan refresh failed", slog.String("error", err.Error()))
		if s.sentry {
			sentry.CaptureException(err)
		}
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// releases everything New acquired.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(s.config),
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.Storage),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// writeTimeout leaves room for the slowest request: opening a shopping list
// can queue behind a plan that is still being generated.
func writeTimeout(cfg *config.Config) time.Duration {
	return 15*time.Second + cfg.PlanLatency + cfg.ShoppingLatency
}

// Close stops the scheduler, flushes error reports and closes storage.
func (s *Server) Close() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.sentry {
		sentry.Flush(2 * time.Second)
	}
	return s.closeStore()
}
