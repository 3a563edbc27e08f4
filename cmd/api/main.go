package main

import (
	"context"
	"errors"
	"flag"
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
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/Joshburn99/NexSpace-sub001/api/swagger"
	"github.com/Joshburn99/NexSpace-sub001/internal/handler"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	"github.com/Joshburn99/NexSpace-sub001/internal/repository"
	"github.com/Joshburn99/NexSpace-sub001/internal/scheduler"
	"github.com/Joshburn99/NexSpace-sub001/internal/service"
	"github.com/Joshburn99/NexSpace-sub001/pkg/cache"
	"github.com/Joshburn99/NexSpace-sub001/pkg/config"
	"github.com/Joshburn99/NexSpace-sub001/pkg/database"
	"github.com/Joshburn99/NexSpace-sub001/pkg/events"
	"github.com/Joshburn99/NexSpace-sub001/pkg/jobs"
	"github.com/Joshburn99/NexSpace-sub001/pkg/logger"
)

// @title NexSpace Shift Engine API
// @version 1.0.0
// @description Recurring shift generation and reconciliation for facility staffing.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	once := flag.Bool("once", false, "run one generate-all sweep and exit")
	tokenUser := flag.String("issue-token", "", "print an access token for this user id and exit")
	tokenRole := flag.String("role", string(models.RoleAdmin), "role for -issue-token")
	tokenFacilities := flag.String("facilities", "", "comma separated facility ids for -issue-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if *tokenUser != "" {
		issueToken(cfg, logr, *tokenUser, models.UserRole(*tokenRole), *tokenFacilities)
		return
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	app := buildApp(cfg, db, logr)
	defer app.close()

	if *once {
		runOnce(ctx, app, cfg, logr)
		return
	}
	serve(ctx, app, cfg, logr)
}

func issueToken(cfg *config.Config, logr *zap.Logger, userID string, role models.UserRole, facilities string) {
	auth := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, AccessTokenExpiry: cfg.JWT.Expiration})
	var facilityIDs []string
	for _, id := range strings.Split(facilities, ",") {
		if id = strings.TrimSpace(id); id != "" {
			facilityIDs = append(facilityIDs, id)
		}
	}
	token, expiresAt, err := auth.IssueToken(userID, role, facilityIDs)
	if err != nil {
		logr.Fatal("failed to issue token", zap.Error(err))
	}
	fmt.Println(token)
	logr.Info("token issued", zap.String("user_id", userID), zap.Time("expires_at", expiresAt))
}

func runOnce(ctx context.Context, app *application, cfg *config.Config, logr *zap.Logger) {
	summary, err := app.generation.GenerateAll(ctx, 0)
	if err != nil {
		logr.Fatal("generation sweep failed", zap.Error(err))
	}
	logr.Info("generation sweep finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("created", summary.Created),
		zap.Int("failed", len(summary.Errors)),
	)
	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}

func serve(ctx context.Context, app *application, cfg *config.Config, logr *zap.Logger) {
	app.queue.Start(ctx)
	defer app.queue.Stop()

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(scheduler.Config{
			Spec:     cfg.Scheduler.CronSpec,
			Location: cfg.Shifts.Location(),
		}, app.dispatcher, logr)
		if err != nil {
			logr.Fatal("failed to configure scheduler", zap.Error(err))
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// application holds the wired services shared by the HTTP server and the one-shot runner.
type application struct {
	metrics     *service.MetricsService
	auth        *service.AuthService
	templates   *service.ShiftTemplateService
	generation  *service.ShiftGenerationService
	maintenance *service.ShiftMaintenanceService
	unified     *service.UnifiedShiftService
	dispatcher  *service.GenerationDispatcher
	queue       *jobs.Queue
	checks      map[string]handler.ReadinessCheck
	closers     []func() error
}

func buildApp(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) *application {
	app := &application{
		metrics: service.NewMetricsService(),
		checks: map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
		},
	}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, unified feed cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, "nexspace", logr)
			cacheRepo = repo
			app.checks["redis"] = repo.Ping
			app.closers = append(app.closers, repo.Close)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, app.metrics, cfg.Shifts.UnifiedCacheTTL, logr, cacheRepo != nil)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logr)
		if err != nil {
			logr.Warn("event broker unavailable, events disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	app.closers = append(app.closers, publisher.Close)

	engineCfg := service.ShiftEngineConfig{
		Location:           cfg.Shifts.Location(),
		DefaultHorizonDays: cfg.Shifts.DefaultHorizonDays,
		BatchSize:          cfg.Shifts.BatchSize,
		MaxRangeDays:       cfg.Shifts.MaxRangeDays,
		ColdStartEnabled:   cfg.Shifts.ColdStartEnabled,
		FeedCacheTTL:       cfg.Shifts.UnifiedCacheTTL,
	}

	templateRepo := repository.NewShiftTemplateRepository(db)
	generatedRepo := repository.NewGeneratedShiftRepository(db)
	manualRepo := repository.NewManualShiftRepository(db)

	app.generation = service.NewShiftGenerationService(templateRepo, generatedRepo, db, app.metrics, cacheSvc, publisher, logr, engineCfg)
	app.templates = service.NewShiftTemplateService(templateRepo, generatedRepo, app.generation, validator.New(), cacheSvc, publisher, logr)
	app.maintenance = service.NewShiftMaintenanceService(templateRepo, generatedRepo, app.metrics, cacheSvc, publisher, logr)
	app.unified = service.NewUnifiedShiftService(generatedRepo, manualRepo, app.generation, cacheSvc, logr, engineCfg)
	app.auth = service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})

	worker := service.NewGenerationWorker(app.generation, logr)
	app.queue = jobs.NewQueue("shift-generation", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Scheduler.QueueWorkers,
		MaxRetries: cfg.Scheduler.QueueRetries,
		RetryDelay: cfg.Scheduler.RetryDelay,
		Logger:     logr,
	})
	app.dispatcher = service.NewGenerationDispatcher(app.queue)
	return app
}

func (a *application) close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}

func newRouter(cfg *config.Config, app *application, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	registerRoutes(r, cfg, app, logr)
	return r
}
