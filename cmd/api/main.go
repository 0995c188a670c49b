package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ducky-ai-hub/gold-tech-courses/internal/handler"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/middleware"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/models"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/repository"
	"github.com/ducky-ai-hub/gold-tech-courses/internal/service"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/cache"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/config"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/database"
	"github.com/ducky-ai-hub/gold-tech-courses/pkg/logger"
	corsmiddleware "github.com/ducky-ai-hub/gold-tech-courses/pkg/middleware/cors"
	reqidmiddleware "github.com/ducky-ai-hub/gold-tech-courses/pkg/middleware/requestid"
)

// catalogStore is the common surface of the database catalog and the
// bundled sample catalog.
type catalogStore interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
	SetEnrolled(ctx context.Context, id int, enrolled bool) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// The database is optional: without a Supabase (or other Postgres)
	// endpoint the catalog serves bundled sample courses and durable writes
	// are unavailable.
	var db *sqlx.DB
	if cfg.Catalog.SupabaseURL != "" || cfg.Registration.Backend == config.RegistrationBackendTable {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect database", "error", err)
		}
		defer db.Close() //nolint:errcheck
	}

	var redisClient *redis.Client
	if db != nil {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var store catalogStore
	if db != nil {
		store = repository.NewCourseRepository(db)
	} else {
		logr.Info("no catalog database configured, serving sample courses")
		store = repository.NewStaticCatalog()
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	courseSvc := service.NewCourseService(store, cacheRepo, metrics, cfg.Catalog.CacheTTL, logr)
	enrollmentSvc := service.NewEnrollmentService(store, courseSvc, logr)
	verificationSvc := service.NewVerificationService(cfg.Verification, cfg.Env, logr)

	var registrationRepo *repository.RegistrationRepository
	if db != nil {
		registrationRepo = repository.NewRegistrationRepository(db)
	}

	backend := buildBackend(cfg, registrationRepo, logr)
	registrationSvc := service.NewRegistrationService(backend, verificationSvc, enrollmentSvc, metrics, validator.New(), logr)
	workflowSvc := service.NewWorkflowService(verificationSvc, registrationSvc, courseSvc, metrics, logr)

	var exportSvc *service.ExportService
	if registrationRepo != nil {
		exportSvc = service.NewExportService(registrationRepo, logr)
	} else {
		exportSvc = service.NewExportService(nil, logr)
	}

	courseHandler := handler.NewCourseHandler(courseSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc, exportSvc)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)

		api.POST("/registrations", registrationHandler.Create)
		if cfg.Exports.Enabled {
			api.GET("/registrations/export", registrationHandler.Export)
		}

		sessions := api.Group("/workflow/sessions")
		sessions.POST("", workflowHandler.Open)
		sessions.GET("/:id", workflowHandler.Get)
		sessions.POST("/:id/verify", workflowHandler.Verify)
		sessions.POST("/:id/submit", workflowHandler.Submit)
		sessions.DELETE("/:id", workflowHandler.Close)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"registration_backend", cfg.Registration.Backend,
		"verification_mode", string(verificationSvc.Mode()))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildBackend selects the registration submitter from configuration. A
// selection that cannot be satisfied degrades to the disabled backend, which
// rejects submissions with a configuration error instead of failing startup.
func buildBackend(cfg *config.Config, registrations *repository.RegistrationRepository, logr *zap.Logger) service.RegistrationBackend {
	switch cfg.Registration.Backend {
	case config.RegistrationBackendRemote:
		endpoint := cfg.Registration.EndpointURL
		if endpoint == "" && cfg.Catalog.SupabaseURL != "" {
			endpoint = strings.TrimRight(cfg.Catalog.SupabaseURL, "/") + "/functions/v1/register-course"
		}
		if endpoint == "" {
			logr.Warn("remote registration backend selected without an endpoint, submissions disabled")
			return service.NewDisabledBackend()
		}
		return service.NewRemoteBackend(endpoint, cfg.Catalog.SupabaseAnonKey, logr)
	case config.RegistrationBackendTable:
		if registrations == nil {
			logr.Warn("table registration backend selected without a database, submissions disabled")
			return service.NewDisabledBackend()
		}
		return service.NewTableBackend(registrations, logr)
	default:
		logr.Warn("unknown registration backend, submissions disabled",
			zap.String("backend", cfg.Registration.Backend))
		return service.NewDisabledBackend()
	}
}
