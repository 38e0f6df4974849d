package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/database"
	"github.com/segyhp/loan-engine/internal/logger"
	"github.com/segyhp/loan-engine/internal/repository"
	"github.com/segyhp/loan-engine/internal/scheduler"
	"github.com/segyhp/loan-engine/internal/service"
)

func main() {
	once := flag.Bool("once", false, "run a single reminder pass and exit")
	flag.Parse()

	_ = godotenv.Load()

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

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := database.NewRedis(cfg.Redis)
	defer redisClient.Close()

	store := repository.NewStore(db)
	cache := repository.NewReminderCache(redisClient, cfg.Redis.DedupTTL)
	reminderService := service.NewReminderService(store, cache, cfg, zapLogger)

	s, err := scheduler.New(reminderService, scheduler.Config{
		Spec:     cfg.Scheduler.Spec,
		Location: cfg.GetSchedulerLocation(),
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to create reminder scheduler", zap.Error(err))
	}

	if *once {
		if _, err := s.RunNow(context.Background()); err != nil {
			zapLogger.Fatal("reminder run failed", zap.Error(err))
		}
		return
	}

	s.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		zapLogger.Warn("reminder run interrupted by shutdown", zap.Error(err))
	}
}
