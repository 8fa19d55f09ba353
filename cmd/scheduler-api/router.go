package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/handler"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/middleware"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/config"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/tennis-lesson-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tennis-lesson-scheduler/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens      middleware.TokenValidator
	metrics     *service.MetricsService
	limiter     *middleware.RateLimiter
	schedules   *handler.LessonScheduleHandler
	constraints *handler.ConstraintHandler
	preferences *handler.CoachPreferenceHandler
	roster      *handler.RosterHandler
	system      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.system.Health)
	r.GET("/ready", deps.system.Ready)
	r.GET("/metrics", deps.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(logr, action, resource)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens))

	schedules := api.Group("/lesson-schedules")
	schedules.POST("/generate", admin, deps.limiter.Middleware(deps.metrics), audit("generate", "lesson_schedule"), deps.schedules.Generate)
	schedules.GET("", deps.schedules.List)
	schedules.GET("/:id", deps.schedules.Get)
	schedules.GET("/:id/stats", deps.schedules.Stats)
	schedules.GET("/:id/export", deps.schedules.Export)
	schedules.PATCH("/:id/entries/:entryId", admin, audit("lock_entry", "lesson_schedule"), deps.schedules.SetEntryLock)
	schedules.POST("/:id/publish", admin, audit("publish", "lesson_schedule"), deps.schedules.Publish)
	schedules.DELETE("/:id", admin, audit("delete", "lesson_schedule"), deps.schedules.Delete)

	constraints := api.Group("/constraints")
	constraints.GET("", deps.constraints.List)
	constraints.PATCH("/:id", admin, audit("patch", "constraint"), deps.constraints.Patch)
	constraints.PUT("/:id", admin, audit("replace", "constraint"), deps.constraints.Replace)

	coaches := api.Group("/coaches")
	coaches.GET("/:id/preferences", deps.preferences.Get)
	coaches.PUT("/:id/preferences", middleware.RBAC(string(models.RoleAdmin), middleware.SelfCoach), audit("update", "coach_preferences"), deps.preferences.Update)

	roster := api.Group("/roster")
	roster.GET("", deps.roster.List)
	roster.POST("/import", admin, audit("import", "roster"), deps.roster.Import)
	roster.DELETE("/students/:id", admin, audit("delete", "student"), deps.roster.DeleteStudent)

	return r
}
