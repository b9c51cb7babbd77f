package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"okrtrack/internal/domain/activity"
	"okrtrack/internal/domain/auth"
	"okrtrack/internal/domain/finance"
	"okrtrack/internal/domain/identity"
	"okrtrack/internal/domain/meetings"
	"okrtrack/internal/domain/notifications"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/domain/reports"
	"okrtrack/internal/domain/resources"
	"okrtrack/internal/domain/search"
	"okrtrack/internal/domain/settings"
	"okrtrack/internal/platform/cache"
	"okrtrack/internal/platform/config"
	cryptoutil "okrtrack/internal/platform/crypto"
	"okrtrack/internal/platform/db"
	"okrtrack/internal/platform/email"
	"okrtrack/internal/platform/jobs"
	"okrtrack/internal/platform/metrics"
	activityhandler "okrtrack/internal/transport/http/handlers/activity"
	adminhandler "okrtrack/internal/transport/http/handlers/admin"
	authhandler "okrtrack/internal/transport/http/handlers/auth"
	financehandler "okrtrack/internal/transport/http/handlers/finance"
	identityhandler "okrtrack/internal/transport/http/handlers/identity"
	meetingshandler "okrtrack/internal/transport/http/handlers/meetings"
	notificationshandler "okrtrack/internal/transport/http/handlers/notifications"
	okrhandler "okrtrack/internal/transport/http/handlers/okr"
	reportshandler "okrtrack/internal/transport/http/handlers/reports"
	resourceshandler "okrtrack/internal/transport/http/handlers/resources"
	searchhandler "okrtrack/internal/transport/http/handlers/search"
	settingshandler "okrtrack/internal/transport/http/handlers/settings"
	"okrtrack/internal/transport/http/middleware"
)

// App bundles everything a running server needs. Tests construct one with
// New and mount App.Router on httptest.
type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

func (a *App) Close() {
	a.DB.Close()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		migrationsDir := cfg.MigrationsDir
		if migrationsDir == "" {
			migrationsDir = "migrations"
		}
		if err := db.Migrate(ctx, pool, migrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	encryption, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption setup failed: %w", err)
	}

	authStore := auth.NewStore(pool)
	identityService := identity.NewService(identity.NewStore(pool))
	okrService := okr.NewService(okr.NewStore(pool))
	meetingsService := meetings.NewService(meetings.NewStore(pool))
	resourcesStore := resources.NewStore(pool)
	financeStore := finance.NewStore(pool)
	settingsStore := settings.NewStore(pool)
	activityService := activity.New(pool)
	notifyService := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notifyService.DefaultFrom = cfg.EmailFrom
	searchService := search.New(identityService, okrService, resourcesStore, cache.New(cfg.CacheTTL))
	reportsService := reports.NewService(reports.NewStore(pool), cfg.ReportStorageDir, cfg.PublicBaseURL)

	collector := metrics.New()
	jobsService := jobs.New(pool, cfg, okr.NewStore(pool), identity.NewStore(pool))
	jobsService.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

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

	router.Route("/api", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, encryption, cfg.OrgName).RegisterRoutes(r)
		identityhandler.NewHandler(identityService, activityService, notifyService, searchService).RegisterRoutes(r)
		okrhandler.NewHandler(okrService, activityService, notifyService, searchService).RegisterRoutes(r)
		meetingshandler.NewHandler(meetingsService, activityService, notifyService).RegisterRoutes(r)
		resourceshandler.NewHandler(resourcesStore, activityService, searchService).RegisterRoutes(r)
		financehandler.NewHandler(financeStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		settingshandler.NewHandler(settingsStore, encryption, activityService).RegisterRoutes(r)
		activityhandler.NewHandler(activityService).RegisterRoutes(r)
		searchhandler.NewHandler(searchService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService).RegisterRoutes(r)
		adminhandler.NewHandler(jobsService, collector).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "development" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// spaHandler serves the built frontend, falling back to index.html so
// client-side routes resolve on refresh.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
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
