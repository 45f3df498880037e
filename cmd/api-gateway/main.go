package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus2career-api/api/swagger"
	"github.com/noah-isme/campus2career-api/internal/handler"
	"github.com/noah-isme/campus2career-api/internal/middleware"
	"github.com/noah-isme/campus2career-api/internal/repository"
	"github.com/noah-isme/campus2career-api/internal/router"
	"github.com/noah-isme/campus2career-api/internal/service"
	"github.com/noah-isme/campus2career-api/pkg/cache"
	"github.com/noah-isme/campus2career-api/pkg/config"
	"github.com/noah-isme/campus2career-api/pkg/database"
	"github.com/noah-isme/campus2career-api/pkg/document"
	"github.com/noah-isme/campus2career-api/pkg/export"
	"github.com/noah-isme/campus2career-api/pkg/jobs"
	"github.com/noah-isme/campus2career-api/pkg/llm"
	"github.com/noah-isme/campus2career-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus2career-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus2career-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus2career-api/pkg/response"
	"github.com/noah-isme/campus2career-api/pkg/storage"
)

// @title Campus2Career API
// @version 1.0.0
// @description Academic records, resume analysis, career guidance and job applications for students and recruiters.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	response.ExposeErrorDetails(cfg.Env != config.EnvProduction)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	applied, err := database.Migrate(ctx, db, logr)
	if err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}
	if len(applied) > 0 {
		logr.Info("migrations applied", zap.Strings("versions", applied))
	}

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisClient = client
			defer client.Close() //nolint:errcheck
		}
	}

	apiPrefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	store, localFiles, err := newStore(ctx, cfg, apiPrefix+"/files")
	if err != nil {
		logr.Fatal("failed to init storage", zap.Error(err))
	}

	extractor, err := document.NewExtractor(ctx, logr)
	if err != nil {
		logr.Fatal("failed to init document extractor", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	policy := service.UploadPolicy{MaxBytes: cfg.Upload.MaxFileSizeBytes, AllowedMIMEs: cfg.Upload.AllowedMIMEs}

	var structurer *service.StructuredExtractor
	if cfg.LLM.Enabled() {
		structurer = service.NewStructuredExtractor(llm.NewClient(cfg.LLM, logr, llm.WithObserver(metricsSvc)), logr)
	} else {
		structurer = service.NewStructuredExtractor(nil, logr)
	}
	logr.Info("structured extraction mode", zap.String("mode", structurer.Mode()))

	cleaner := jobs.NewBlobCleaner(store, logr)
	cleaner.Start(context.Background())
	defer cleaner.Stop(10 * time.Second)

	userRepo := repository.NewUserRepository(db)
	marksheetRepo := repository.NewMarksheetRepository(db)
	summaryRepo := repository.NewAcademicSummaryRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	profileRepo := repository.NewCareerProfileRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DashboardTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	pdf := export.NewPDFExporter()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campus2career-api",
	})
	userSvc := service.NewUserService(userRepo, applicationRepo, cleaner, cacheSvc, logr)
	summarySvc := service.NewAcademicSummaryService(marksheetRepo, summaryRepo, pdf, logr)
	marksheetSvc := service.NewMarksheetService(service.MarksheetServiceParams{
		Store:      marksheetRepo,
		Extractor:  extractor,
		Structurer: structurer,
		Summaries:  summarySvc,
		Audit:      userRepo,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Policy:     policy,
		Logger:     logr,
	})
	resumeSvc := service.NewResumeService(service.ResumeServiceParams{
		Store:      resumeRepo,
		Extractor:  extractor,
		Structurer: structurer,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Policy:     policy,
		Logger:     logr,
	})
	careerSvc := service.NewCareerService(summarySvc, resumeSvc, profileRepo, jobRepo, structurer, logr)
	jobSvc := service.NewJobService(jobRepo, applicationRepo, cleaner, validate, logr)
	applicationSvc := service.NewApplicationService(service.ApplicationServiceParams{
		Apps:      applicationRepo,
		Jobs:      jobRepo,
		Store:     store,
		Audit:     userRepo,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Policy:    policy,
		Logger:    logr,
	})
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metricsSvc, cfg.Cache.DashboardTTL, logr)
	exportSvc := service.NewExportService(analyticsRepo, export.NewCSVExporter(), pdf, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	checks := map[string]handler.Pinger{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	maxBytes := cfg.Upload.MaxFileSizeBytes
	handlers := router.Handlers{
		Auth:            handler.NewAuthHandler(authSvc),
		Users:           handler.NewUserHandler(userSvc),
		Marksheets:      handler.NewMarksheetHandler(marksheetSvc, maxBytes),
		AcademicSummary: handler.NewAcademicSummaryHandler(summarySvc),
		Resume:          handler.NewResumeHandler(resumeSvc, maxBytes),
		Career:          handler.NewCareerHandler(careerSvc),
		Jobs:            handler.NewJobHandler(jobSvc),
		Applications:    handler.NewApplicationHandler(applicationSvc, maxBytes),
		Analytics:       handler.NewAnalyticsHandler(analyticsSvc, exportSvc),
	}
	if localFiles != nil {
		handlers.Files = handler.NewFileHandler(localFiles)
	}
	router.RegisterRoutes(r.Group(apiPrefix), handlers, router.Options{Tokens: authSvc, Audit: userRepo})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// newStore selects the blob backend. The local backend is also returned on
// its own so the API can serve its signed links.
func newStore(ctx context.Context, cfg *config.Config, filesPath string) (storage.Store, *storage.LocalStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMinIO:
		store, err := storage.NewMinIOStorage(ctx, cfg.Storage.MinIO, cfg.Storage.SignedURLTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StorageDriverLocal, "":
		signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
		local, err := storage.NewLocalStorage(cfg.Storage.LocalDir, signer, filesPath)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
