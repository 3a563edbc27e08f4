package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/handler"
	"github.com/Joshburn99/NexSpace-sub001/internal/middleware"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	"github.com/Joshburn99/NexSpace-sub001/pkg/config"
	"github.com/Joshburn99/NexSpace-sub001/pkg/logger"
	corsmiddleware "github.com/Joshburn99/NexSpace-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/Joshburn99/NexSpace-sub001/pkg/middleware/requestid"
)

func registerRoutes(r *gin.Engine, cfg *config.Config, app *application, logr *zap.Logger) {
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))
	r.Use(middleware.WithFeedMeta())

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	templateHandler := handler.NewShiftTemplateHandler(app.templates, app.generation, app.maintenance, app.dispatcher)
	maintenanceHandler := handler.NewShiftMaintenanceHandler(app.maintenance)
	unifiedHandler := handler.NewUnifiedShiftHandler(app.unified, cfg.Shifts.Location())
	limiter := middleware.NewRateLimiter(cfg.RateLimit.GenerationRPS, cfg.RateLimit.GenerationBurst)

	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	managers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleFacilityManager)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(app.auth))

	api.GET("/metrics/summary", admins, metricsHandler.Summary)

	templates := api.Group("/shift-templates")
	templates.GET("", templateHandler.List)
	templates.POST("", managers, templateHandler.Create)
	templates.GET("/gaps", admins, templateHandler.Gaps)
	templates.POST("/generate-all", admins, limiter.Handler(), templateHandler.GenerateAll)
	templates.GET("/:id", templateHandler.Get)
	templates.PATCH("/:id", managers, templateHandler.Update)
	templates.DELETE("/:id", managers, templateHandler.Deactivate)
	templates.POST("/:id/generate", managers, limiter.Handler(), templateHandler.Generate)
	templates.POST("/:id/validate-timing", admins, templateHandler.ValidateTiming)
	templates.POST("/:id/resync-count", admins, templateHandler.ResyncCount)

	shifts := api.Group("/shifts")
	shifts.GET("/unified", unifiedHandler.List)
	shifts.GET("/unified/export", unifiedHandler.Export)
	shifts.POST("/deduplicate", admins, maintenanceHandler.Deduplicate)
}
