package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otos_backend/internal/config"
	"otos_backend/internal/controller"
	"otos_backend/internal/repository"
	"otos_backend/internal/service"
	"otos_backend/pkg/database"
	"otos_backend/pkg/logger"
	"otos_backend/pkg/monitoring"
	"otos_backend/pkg/security"
	"otos_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	cron            *cron.Cron
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	category *repository.CategoryRepository
	question *repository.QuestionRepository
	pkg      *repository.PackageRepository
	session  *repository.TestSessionRepository
	ranking  *repository.RankingRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	category    *service.CategoryService
	question    *service.QuestionService
	pkg         *service.PackageService
	test        *service.TestSessionService
	calibration *service.CalibrationService
	ranking     *service.RankingService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	category    *controller.CategoryController
	question    *controller.QuestionController
	pkg         *controller.PackageController
	test        *controller.TestController
	calibration *controller.CalibrationController
	ranking     *controller.RankingController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig is the hot-reload entry point. The new values are copied into
// the existing Config so components holding the pointer (auth middleware,
// services) pick them up without a restart.
func (a *App) ApplyConfig(cfg interface{}) {
	newCfg, ok := cfg.(*config.Config)
	if !ok {
		return
	}
	newCfg.ForceMigrate = a.Config.ForceMigrate
	newCfg.MigrateOnly = a.Config.MigrateOnly
	*a.Config = *newCfg

	logger.Log.Info("configuration reloaded")
	for _, callback := range a.configCallbacks {
		callback(a.Config)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		category: repository.NewCategoryRepository(db),
		question: repository.NewQuestionRepository(db),
		pkg:      repository.NewPackageRepository(db),
		session:  repository.NewTestSessionRepository(db),
		ranking:  repository.NewRankingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.category = service.NewCategoryService(repos.category)
	s.question = service.NewQuestionService(repos.question, repos.category, s.storage)
	s.pkg = service.NewPackageService(repos.pkg, repos.category)
	s.test = service.NewTestSessionService(repos.session, repos.category, repos.question, repos.pkg, s.pkg, db)
	s.calibration = service.NewCalibrationService(repos.category, repos.question, db, logger.Log)
	s.ranking = service.NewRankingService(repos.ranking, rdb, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		category:    controller.NewCategoryController(s.category),
		question:    controller.NewQuestionController(s.question),
		pkg:         controller.NewPackageController(s.pkg),
		test:        controller.NewTestController(s.test, s.pkg),
		calibration: controller.NewCalibrationController(s.calibration),
		ranking:     controller.NewRankingController(s.ranking),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks schedules the periodic UTBK difficulty
// recalibration. The schedule comes from config; empty disables it.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if cfg.Calibration.Schedule == "" {
		return
	}

	a.cron = cron.New()
	_, err := a.cron.AddFunc(cfg.Calibration.Schedule, func() {
		reports, err := s.calibration.RecalibrateAllUTBK()
		if err != nil {
			logger.Log.Error("scheduled recalibration failed", zap.Error(err))
			return
		}
		logger.Log.Info("scheduled recalibration finished", zap.Int("categories", len(reports)))
	})
	if err != nil {
		logger.Log.Error("invalid calibration schedule",
			zap.String("schedule", cfg.Calibration.Schedule), zap.Error(err))
		return
	}
	a.cron.Start()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Rankings degrade to uncached queries without Redis.
		logger.Log.Warn("Redis unavailable, ranking cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("tryout-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.cron != nil {
		a.cron.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
