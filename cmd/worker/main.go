package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/cache"
	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/database"
	"github.com/clinic-saas-api/internal/queue"
	"github.com/clinic-saas-api/internal/repository"
	"github.com/clinic-saas-api/internal/services"
)

// Background worker: email delivery and the hourly subscription sweep.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.App.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	dbManager := database.GetManager(cfg)
	if err := dbManager.InitPool(ctx); err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	pool := dbManager.GetPool()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis client", zap.Error(err))
	}

	subscriptionRepo := repository.NewSubscriptionRepository(pool, redisClient, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, logger)

	emailWorker := queue.NewEmailWorker(&cfg.SMTP, logger)
	sweepWorker := queue.NewSweepWorker(subscriptionService, logger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypePasswordResetEmail, emailWorker.HandlePasswordReset)
	mux.HandleFunc(queue.TypeSubscriptionSweep, sweepWorker.HandleSweep)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("@every 1h", queue.NewSubscriptionSweepTask()); err != nil {
		logger.Fatal("Failed to register sweep schedule", zap.Error(err))
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal("Scheduler stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Worker started")
		if err := srv.Run(mux); err != nil {
			logger.Fatal("Worker stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	scheduler.Shutdown()
	srv.Shutdown()
	redisClient.Close()
	dbManager.Close()

	logger.Info("Worker exited")
}
