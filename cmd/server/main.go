package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yukikurage/intern-management-api/internal/cache"
	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/config"
	"github.com/yukikurage/intern-management-api/internal/constants"
	"github.com/yukikurage/intern-management-api/internal/database"
	"github.com/yukikurage/intern-management-api/internal/handlers"
	"github.com/yukikurage/intern-management-api/internal/logging"
	"github.com/yukikurage/intern-management-api/internal/middleware"
	"github.com/yukikurage/intern-management-api/internal/progress"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"github.com/yukikurage/intern-management-api/internal/scheduler"
	"github.com/yukikurage/intern-management-api/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	// Load configuration
	cfg := config.Load()

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return err
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return err
	}

	db := database.GetDB()
	if _, err := database.SeedSuperAdmin(db, cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		return err
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort

	// Stats are cached only when Redis answers; the service runs uncached otherwise.
	var statsCache services.StatsCache
	redisCache, err := cache.New(ctx, cache.Config{Addr: redisAddr, DialTimeout: 2 * time.Second})
	if err != nil {
		logger.Warn("Stats cache disabled", "addr", redisAddr, "error", err)
	} else {
		statsCache = redisCache
		defer redisCache.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	// Services
	clk := clock.System()
	policy := progress.Policy{
		TaskWeight:         cfg.ProgressTaskWeight,
		AttendanceCapDays:  cfg.ProgressAttendanceCapDays,
		MinCompletionRatio: cfg.CertificateMinCompletion,
		MinAttendanceDays:  cfg.CertificateMinAttendance,
	}.Normalize()

	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey)
	}

	notificationService := services.NewNotificationService(notifRepo, clk, logger)
	progressService := services.NewProgressService(userRepo, taskRepo, policy)
	certificateService := services.NewCertificateService(certRepo, userRepo, taskRepo, teamRepo, policy, notificationService, clk, logger)
	refresher := services.NewInternRefresher(progressService, certificateService, logger)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, teamRepo, refresher, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, refresher, logger)
	taskService := services.NewTaskService(taskRepo, userRepo, teamRepo, notificationService, refresher, drafter, clk, logger)
	resourceService := services.NewResourceService(resourceRepo, userRepo, teamRepo, notificationService, logger)
	statsService := services.NewStatsService(userRepo, teamRepo, taskRepo, resourceRepo, certRepo,
		statsCache, cache.StatsKey, cfg.StatsCacheTTL, logger)

	// Reconciliation timer
	reconciler := scheduler.NewReconciler(userRepo, refresher, logger)
	timer := scheduler.NewTimer(cfg.ReconcileInterval, clk, reconciler.Job(), logger)
	if err := timer.Start(ctx); err != nil {
		return err
	}
	defer timer.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		return err
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAgeSecond,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUserHandler(userService, progressService),
		Teams:         handlers.NewTeamHandler(teamService),
		Tasks:         handlers.NewTaskHandler(taskService),
		Resources:     handlers.NewResourceHandler(resourceService),
		Certificates:  handlers.NewCertificateHandler(certificateService),
		Notifications: handlers.NewNotificationHandler(notificationService, cfg.NotificationPollSeconds),
		Stats:         handlers.NewStatsHandler(statsService),
	}, handlers.Guards{
		Auth:       middleware.RequireAuth(authService),
		TaskAccess: middleware.RequireTaskAccess(taskService),
		TeamAccess: middleware.RequireTeamAccess(teamService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "reconcile_interval", timer.Interval().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	logger.Info("Starting graceful shutdown", "timeout", cfg.ShutdownTimeout.String())
	timer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Shutdown completed")
	return nil
}
