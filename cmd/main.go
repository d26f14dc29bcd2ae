package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentorlink/backend/internal/alumni"
	"mentorlink/backend/internal/api/handler"
	"mentorlink/backend/internal/api/middleware"
	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/localization"
	"mentorlink/backend/internal/mentorship"
	"mentorlink/backend/internal/notify"
	"mentorlink/backend/internal/storage"
	"mentorlink/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, log *logrus.Logger) (*gorm.DB, *redis.Client) {
	db, err := storage.Open(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Info("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func loadLocalizer(cfg *config.Config) (*localization.Localizer, error) {
	if cfg.LocalesDir != "" {
		return localization.NewLocalizer(cfg.LocalesDir)
	}
	return localization.Default()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)
	log.Info("Starting MentorLink backend...")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Infrastructure
	db, rdb := setupDependencies(cfg, log)
	store := storage.NewStorageService(db)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	asynqClient := asynq.NewClient(redisOpt)
	notifier := notify.NewQueueNotifier(asynqClient, log)

	// 2. Chat hub and services
	hub := chathub.NewManagerService(log)
	gateway := chathub.NewGateway(store, hub, log)
	authSvc := auth.NewService(store, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry), auth.NewRedisRevoker(rdb), notifier, log)
	mentorSvc := mentorship.NewService(store, gateway.Rooms, notifier, log)
	alumniSvc := alumni.NewService(store)

	// 3. Email worker
	localizer, err := loadLocalizer(cfg)
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}
	emailHandler := worker.NewEmailDeliveryHandler(localizer, worker.NewMailer(cfg.Email, log), log)
	workerServer := worker.NewWorkerServer(redisOpt, cfg.WorkerConcurrency, emailHandler, log)
	if err := workerServer.Start(); err != nil {
		log.Fatalf("Failed to start worker server: %v", err)
	}

	// 4. HTTP
	h := handler.NewHandler(authSvc, alumniSvc, mentorSvc, gateway, cfg.CORSAllowedOrigin, log)
	router := handler.NewRouter(h, handler.RouterOptions{
		CORSOrigin: cfg.CORSAllowedOrigin,
		RateLimit:  middleware.RateLimit(rdb, cfg.RateLimitMax, cfg.RateLimitWindow, log),
	})
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		log.Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	hub.Shutdown()
	notifier.Wait()
	workerServer.Shutdown()
	if err := asynqClient.Close(); err != nil {
		log.WithError(err).Error("Error closing asynq client")
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis connection")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Shutdown complete.")
}
