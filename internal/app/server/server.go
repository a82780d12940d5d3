package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/core"
	"hrms/internal/domain/expense"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/payroll"
	"hrms/internal/domain/workflow"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/platform/email"
	"hrms/internal/platform/metrics"
	"hrms/internal/transport/http/api"
	attendancehandler "hrms/internal/transport/http/handlers/attendance"
	authhandler "hrms/internal/transport/http/handlers/auth"
	companyhandler "hrms/internal/transport/http/handlers/company"
	corehandler "hrms/internal/transport/http/handlers/core"
	expensehandler "hrms/internal/transport/http/handlers/expense"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	notificationshandler "hrms/internal/transport/http/handlers/notifications"
	payrollhandler "hrms/internal/transport/http/handlers/payroll"
	workflowhandler "hrms/internal/transport/http/handlers/workflow"
	"hrms/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires the full application against an already-connected pool.
// Migrations and seeding are the caller's concern.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	collector := metrics.New()

	authStore := auth.NewStore(pool)
	companyStore := company.NewStore(pool)
	coreStore := core.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	expenseService := expense.NewService(pool)
	payrollService := payroll.NewService(pool, coreStore)
	workflowStore := workflow.NewStore(pool)
	notifyService := notifications.New(pool, email.New(cfg), cfg.EmailFrom)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	// Auth runs first so the limiter can key on the authenticated user
	// instead of the client IP.
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.SessionTTL)
		r.With(middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)).Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Post("/auth/logout", authHandler.HandleLogout)
		r.With(middleware.RequireAuth).Post("/auth/mfa/setup", authHandler.HandleMFASetup)
		r.With(middleware.RequireAuth).Post("/auth/mfa/enable", authHandler.HandleMFAEnable)
		r.With(middleware.RequireAuth).Post("/auth/mfa/disable", authHandler.HandleMFADisable)

		companyhandler.NewHandler(companyStore).RegisterRoutes(r)
		corehandler.NewHandler(coreStore, companyStore).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceStore, coreStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveStore, coreStore, notifyService).RegisterRoutes(r)
		expensehandler.NewHandler(expenseService, coreStore, notifyService).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, coreStore, companyStore).RegisterRoutes(r)
		workflowhandler.NewHandler(workflowStore, coreStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.With(middleware.RequireSuperAdmin).Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}
}

// Bootstrap connects, migrates and seeds per configuration.
func Bootstrap(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return New(cfg, pool), nil
}

func (a *App) Run() error {
	server := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
