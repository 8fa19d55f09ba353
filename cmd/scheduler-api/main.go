package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tennis-lesson-scheduler/api/swagger"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/handler"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/middleware"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/repository"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/scheduler"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/cache"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/config"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/database"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/export"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/logger"
)

// @title Tennis Lesson Scheduler API
// @version 1.0.0
// @description Builds weekly tennis lesson timetables from a roster of coaches and students.
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		applied, err := database.Migrate(migrateCtx, db)
		cancelMigrate()
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		if len(applied) > 0 {
			logr.Info("migrations applied", zap.Strings("names", applied))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable; caching disabled and run locks are process-local", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	catalog, err := loadCatalog(cfg.Scheduler.ConstraintCatalogPath)
	if err != nil {
		logr.Fatal("failed to load constraint catalogue", zap.String("path", cfg.Scheduler.ConstraintCatalogPath), zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	coachRepo := repository.NewCoachRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	scheduleRepo := repository.NewLessonScheduleRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	lockRepo := repository.NewRunLockRepository(redisClient)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.StatsCacheTTL, logr, redisClient != nil)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.Expiration})
	constraintSvc := service.NewConstraintService(constraintRepo, catalog, cacheSvc, validate, logr)
	coachPrefSvc := service.NewCoachPreferenceService(coachRepo, cacheSvc, validate, logr)
	rosterSvc := service.NewRosterService(coachRepo, studentRepo, db, cacheSvc, validate, logr)
	scheduleSvc := service.NewLessonScheduleService(
		scheduleRepo,
		entryRepo,
		coachRepo,
		studentRepo,
		constraintRepo,
		lockRepo,
		db,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.LessonScheduleConfig{
			Passes:  cfg.Scheduler.Passes,
			Seed:    cfg.Scheduler.Seed,
			Weights: weightsFromConfig(cfg.Scheduler.Weights),
			LockTTL: cfg.Scheduler.LockTTL,
		},
	)
	exportSvc := service.NewExportService(
		scheduleSvc,
		coachRepo,
		service.ExportConfig{PDFTitle: cfg.Export.PDFTitle},
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := constraintSvc.Seed(seedCtx); err != nil {
		logr.Warn("failed to seed constraint catalogue", zap.Error(err))
	}
	cancelSeed()

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := newRouter(cfg, logr, routerDeps{
		tokens:      tokenSvc,
		metrics:     metrics,
		limiter:     middleware.NewRateLimiter(cfg.Scheduler.GenerateRatePerMinute, cfg.Scheduler.GenerateBurst),
		schedules:   handler.NewLessonScheduleHandler(scheduleSvc, exportSvc),
		constraints: handler.NewConstraintHandler(constraintSvc),
		preferences: handler.NewCoachPreferenceHandler(coachPrefSvc),
		roster:      handler.NewRosterHandler(rosterSvc),
		system:      handler.NewMetricsHandler(metrics, readiness),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
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

func loadCatalog(path string) ([]models.Constraint, error) {
	if path == "" {
		return scheduler.DefaultConstraints(), nil
	}
	return scheduler.LoadCatalogFile(path)
}

func weightsFromConfig(w config.WeightsConfig) scheduler.Weights {
	return scheduler.Weights{
		Base:            w.Base,
		PreferredSlot:   w.PreferredSlot,
		AvoidSlot:       w.AvoidSlot,
		PreferredDay:    w.PreferredDay,
		AvoidDay:        w.AvoidDay,
		SameDayLoad:     w.SameDayLoad,
		SpareCapacity:   w.SpareCapacity,
		Midweek:         w.Midweek,
		SpreadViolation: w.SpreadViolation,
		BreakfastBonus:  w.BreakfastBonus,
		FruitBonus:      w.FruitBonus,
		RestBonus:       w.RestBonus,
	}
}
