package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	captchaapp "github.com/calculation/backend/internal/application/captcha"
	catalogapp "github.com/calculation/backend/internal/application/catalog"
	"github.com/calculation/backend/internal/application/export"
	identityapp "github.com/calculation/backend/internal/application/identity"
	marginapp "github.com/calculation/backend/internal/application/margin"
	"github.com/calculation/backend/internal/application/notification"
	partnerapp "github.com/calculation/backend/internal/application/partner"
	reportapp "github.com/calculation/backend/internal/application/report"
	settingapp "github.com/calculation/backend/internal/application/setting"
	"github.com/calculation/backend/internal/domain/captcha"
	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/calculation/backend/internal/infrastructure/cache"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/calculation/backend/internal/infrastructure/dictionary"
	"github.com/calculation/backend/internal/infrastructure/event"
	"github.com/calculation/backend/internal/infrastructure/lock"
	"github.com/calculation/backend/internal/infrastructure/logger"
	"github.com/calculation/backend/internal/infrastructure/mail"
	"github.com/calculation/backend/internal/infrastructure/persistence"
	"github.com/calculation/backend/internal/infrastructure/phone"
	printinginfra "github.com/calculation/backend/internal/infrastructure/printing"
	"github.com/calculation/backend/internal/infrastructure/scheduler"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/calculation/backend/internal/interfaces/http/handler"
	"github.com/calculation/backend/internal/interfaces/http/middleware"
	"github.com/calculation/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/calculation/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Calculation API
//	@version		1.0
//	@description	Quotes (calculations) built from grouped items, with margins, states, reports and exports.

//	@contact.name	API Support
//	@contact.url	https://github.com/calculation/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration, the log level follows changes of the config file
	var atomicLevel zap.AtomicLevel
	var baseLog *zap.Logger
	cfg, err := config.LoadAndWatch(func(next *config.Config) {
		if baseLog != nil && logger.SetLevel(atomicLevel, next.Log.Level) {
			baseLog.Info("Log level changed", zap.String("level", next.Log.Level))
		}
	})
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, atomicLevel, err = logger.NewWithLevel(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry (traces, metrics, logs and profiles)
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, version, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.BridgeLogger(baseLog)
	defer func() {
		_ = logger.Sync(log)
	}()
	metrics, err := telemetry.NewMetrics(providers.Meter("calculation"))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	log.Info("Starting Calculation Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize database connection with custom logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithPrepareStmt(true),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.NewDBTracing(db.Driver(), cfg.Telemetry.DBLogFullSQL, cfg.Telemetry.DBSlowQueryThresh, log)
		if err := tracing.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	// postgres schemas are managed by cmd/migrate
	if cfg.Database.AutoMigrate || db.Driver() != config.DriverPostgres {
		if err := db.AutoMigrate(context.Background()); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	// Redis backs the token blacklist, the captcha store and the maintenance lock
	var redisClient *redis.Client
	var blacklist auth.TokenBlacklist = auth.NewMemoryTokenBlacklist()
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		locker = lock.NewRedisLocker(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	captchaStore, err := cache.NewCaptchaStore(cfg.Captcha, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create captcha store", zap.Error(err))
	}
	defer func() { _ = captchaStore.Close() }()

	objects, err := storage.New(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	mailer, err := mail.NewMailer(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	mailRenderer, err := mail.NewRenderer()
	if err != nil {
		log.Fatal("Failed to load mail templates", zap.Error(err))
	}

	// Initialize repositories
	calculationRepo := persistence.NewGormCalculationRepository(db.DB)
	stateRepo := persistence.NewGormCalculationStateRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	marginRepo := persistence.NewGormGlobalMarginRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	settingService := settingapp.NewService(propertyRepo, stateRepo, categoryRepo, cfg.Calculation.MinMargin, log)
	notificationService := notification.NewService(mailer, mailRenderer, userRepo, notification.Config{
		AppName:    cfg.App.Name,
		BaseURL:    cfg.App.BaseURL,
		AdminEmail: cfg.Mail.AdminEmail,
	}, metrics, log)
	eventBus.Subscribe(notificationService.BelowMarginHandler())

	captchaBuilder := captcha.NewBuilder(dictionary.Default(), captcha.SharedRandom{})
	captchaService := captchaapp.NewService(captchaBuilder, captchaStore, cfg.Captcha.TTL, metrics, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authConfig := identityapp.DefaultAuthServiceConfig()
	authConfig.CaptchaEnabled = cfg.Captcha.Enabled
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, captchaService, notificationService,
		authConfig, metrics, log)
	userService := identityapp.NewUserService(userRepo, blacklist, jwtService.RefreshTokenExpiration(),
		objects, cfg.Storage.ImageSize, notificationService, log)

	calculationService := calcapp.NewCalculationService(calcapp.Repositories{
		Calculations:  calculationRepo,
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		GlobalMargins: marginRepo,
	}, settingService, eventBus, locker, metrics, cfg.Calculation, log)
	stateService := calcapp.NewStateService(stateRepo)
	groupService := catalogapp.NewGroupService(groupRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo, groupRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	taskService := catalogapp.NewTaskService(taskRepo, categoryRepo)
	marginService := marginapp.NewGlobalMarginService(marginRepo)
	customerService := partnerapp.NewCustomerService(customerRepo, phone.NewNormalizer(cfg.Phone.DefaultRegion))
	reportService := reportapp.NewReportService(calculationRepo, log)

	// Export formats, PDF needs a headless browser
	builders := export.DefaultRegistry()
	if cfg.Printing.Enabled {
		renderer := printinginfra.NewChromedpRenderer(printinginfra.ConfigFromSettings(cfg.Printing, log))
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdf, err := printinginfra.NewPDFBuilder(printinginfra.NewTemplateEngine(), renderer,
			printinginfra.WithCompany(cfg.App.Name),
			printinginfra.WithLanguage("en"),
		)
		if err != nil {
			log.Fatal("Failed to initialize PDF builder", zap.Error(err))
		}
		builders[printing.FormatPDF] = pdf
	}
	exportService := export.NewService(export.Repositories{
		Calculations:  calculationRepo,
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		Products:      productRepo,
		Tasks:         taskRepo,
		Customers:     customerRepo,
		GlobalMargins: marginRepo,
	}, settingService, builders, objects, metrics, log)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Daily maintenance (if enabled)
	var trigger *scheduler.DailyTrigger
	if cfg.Scheduler.Enabled {
		trigger, err = scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:          cfg.Scheduler.Hour,
			Minute:        cfg.Scheduler.Minute,
			CheckInterval: cfg.Scheduler.CheckInterval,
		}, maintenanceJobs(cfg.Scheduler, calculationService), log)
		if err != nil {
			log.Fatal("Failed to create maintenance trigger", zap.Error(err))
		}
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance trigger", zap.Error(err))
		}
	}

	// Initialize HTTP handlers
	checks := map[string]handler.HealthChecker{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	handlers := router.Handlers{
		Auth:             handler.NewAuthHandler(authService),
		Captcha:          handler.NewCaptchaHandler(captchaService),
		Calculation:      handler.NewCalculationHandler(calculationService, exportService),
		CalculationState: handler.NewCalculationStateHandler(stateService),
		Group:            handler.NewGroupHandler(groupService),
		Category:         handler.NewCategoryHandler(categoryService),
		Product:          handler.NewProductHandler(productService),
		Task:             handler.NewTaskHandler(taskService),
		GlobalMargin:     handler.NewGlobalMarginHandler(marginService),
		Customer:         handler.NewCustomerHandler(customerService),
		User:             handler.NewUserHandler(userService),
		Setting:          handler.NewSettingHandler(settingService),
		Report:           handler.NewReportHandler(reportService),
		Export:           handler.NewExportHandler(exportService),
		Contact:          handler.NewContactHandler(notificationService),
		Health:           handler.NewHealthHandler(checks),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Start the request span before anything logs
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	if providers.TracingEnabled() {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(providers.Meter("http"), log))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Authenticated: jwtMiddleware,
		Admin:         middleware.RequireAdmin(),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		guards.PublicRateLimit = middleware.RateLimitByKey(authLimiter, middleware.AuthRateLimitKey)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", handlers.Health.Check)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: cfg.Swagger.Enabled}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, group := range router.APIGroups(handlers, guards) {
		r.Register(group)
	}
	r.Setup()

	var httpHandler http.Handler = engine
	if cfg.HTTP.Gzip {
		httpHandler = gzhttp.GzipHandler(engine)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpHandler,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if trigger != nil {
		if err := trigger.Stop(ctx); err != nil {
			log.Error("Error stopping maintenance trigger", zap.Error(err))
		}
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// maintenanceJobs returns the daily jobs: the totals update, then the
// archive when a target state is configured
func maintenanceJobs(cfg config.SchedulerConfig, calculations *calcapp.CalculationService) []scheduler.Job {
	jobs := []scheduler.Job{{
		Name: "update-all",
		Run: func(ctx context.Context) error {
			_, err := calculations.UpdateAll(ctx, calcapp.UpdateQuery{}, scheduler.User)
			return err
		},
	}}
	if cfg.ArchiveState != "" {
		jobs = append(jobs, scheduler.Job{
			Name: "archive",
			Run: func(ctx context.Context) error {
				_, err := calculations.ArchiveToState(ctx, cfg.ArchiveState, cfg.ArchiveAge, false, scheduler.User)
				return err
			},
		})
	}
	return jobs
}
