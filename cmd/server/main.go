package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/database"
	"github.com/segyhp/loan-engine/internal/handler"
	"github.com/segyhp/loan-engine/internal/logger"
	"github.com/segyhp/loan-engine/internal/repository"
	"github.com/segyhp/loan-engine/internal/scheduler"
	"github.com/segyhp/loan-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis
	redisClient := database.NewRedis(cfg.Redis)
	defer redisClient.Close()

	store := repository.NewStore(db)
	cache := repository.NewReminderCache(redisClient, cfg.Redis.DedupTTL)

	// Initialize services
	loanService := service.NewLoanService(store, cfg, zapLogger)
	notificationService := service.NewNotificationService(store.Notifications())
	reminderService := service.NewReminderService(store, cache, cfg, zapLogger)

	router := handler.NewRouter(handler.Handlers{
		Loans:         handler.NewLoanHandler(loanService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Reminders:     handler.NewReminderHandler(reminderService),
		Health:        handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout()),
	}, cfg.Auth.JWTSecret, zapLogger)

	// The standalone scheduler binary is the default; this runs it in-process instead
	var reminders *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		reminders, err = scheduler.New(reminderService, scheduler.Config{
			Spec:     cfg.Scheduler.Spec,
			Location: cfg.GetSchedulerLocation(),
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to create reminder scheduler", zap.Error(err))
		}
		reminders.Start()
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if reminders != nil {
		if err := reminders.Stop(ctx); err != nil {
			zapLogger.Warn("reminder run interrupted by shutdown", zap.Error(err))
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}
