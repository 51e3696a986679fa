// Package server wires configuration, storage, domain services, and the
// HTTP router into a runnable application.
package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/leave"
	"mawared/internal/domain/notifications"
	"mawared/internal/domain/payroll"
	"mawared/internal/domain/policy"
	"mawared/internal/domain/settlement"
	"mawared/internal/platform/config"
	"mawared/internal/platform/metrics"
	"mawared/internal/store"
	"mawared/internal/store/memory"
	"mawared/internal/store/postgres"
	attendancehandler "mawared/internal/transport/http/handlers/attendance"
	authhandler "mawared/internal/transport/http/handlers/auth"
	employeeshandler "mawared/internal/transport/http/handlers/employees"
	leavehandler "mawared/internal/transport/http/handlers/leave"
	notificationshandler "mawared/internal/transport/http/handlers/notifications"
	payrollhandler "mawared/internal/transport/http/handlers/payroll"
	policyhandler "mawared/internal/transport/http/handlers/policy"
	settlementhandler "mawared/internal/transport/http/handlers/settlement"
	"mawared/internal/transport/http/middleware"
)

// Backend is the full persistence surface; both store implementations
// satisfy it.
type Backend interface {
	employee.StoreAPI
	auth.StoreAPI
	leave.StoreAPI
	policy.StoreAPI
	attendance.StoreAPI
	payroll.StoreAPI
	notifications.StoreAPI
	store.IdempotencyAPI
}

type App struct {
	Config  config.Config
	Router  http.Handler
	readyFn func(ctx context.Context) error
}

func New(cfg config.Config, backend Backend, ready func(ctx context.Context) error) *App {
	collector := metrics.New()

	authService := auth.NewService(backend, cfg.JWTSecret)
	employeeService := employee.NewService(backend)
	policyService := policy.NewService(backend)
	attendanceService := attendance.NewService(backend)
	leaveService := leave.NewService(backend, backend, backend)
	payrollService := payroll.NewService(backend, backend, backend, backend, backend)
	settlementService := settlement.NewService(backend, backend)
	notifyService := notifications.New(backend)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(backend))

		if cfg.MetricsEnabled {
			r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				writeSnapshot(w, collector)
			})
		}

		authhandler.NewHandler(authService).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeService).RegisterRoutes(r)
		policyhandler.NewHandler(policyService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, notifyService, collector).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, employeeService, collector).RegisterRoutes(r)
		settlementhandler.NewHandler(settlementService, employeeService, collector).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
	})

	return &App{Config: cfg, Router: router, readyFn: ready}
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	var backend Backend
	var ready func(ctx context.Context) error
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		backend = postgres.New(pool)
		ready = pool.Ping
	default:
		backend = memory.New()
	}

	if err := seed(ctx, cfg, backend); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	app := New(cfg, backend, ready)

	slog.Info("server listening", "addr", cfg.Addr, "backend", cfg.StoreBackend)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func seed(ctx context.Context, cfg config.Config, backend Backend) error {
	if cfg.SeedAdminPassword == "" {
		slog.Warn("no admin seed password configured, skipping admin seed")
		return nil
	}
	authService := auth.NewService(backend, cfg.JWTSecret)
	return authService.EnsureUser(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin, "")
}

func writeSnapshot(w http.ResponseWriter, collector *metrics.Collector) {
	if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
		slog.Warn("metrics write failed", "err", err)
	}
}
