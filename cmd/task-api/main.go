package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varun5711/taskapi/internal/analytics"
	"github.com/Varun5711/taskapi/internal/auth"
	"github.com/Varun5711/taskapi/internal/config"
	"github.com/Varun5711/taskapi/internal/events"
	"github.com/Varun5711/taskapi/internal/handlers"
	"github.com/Varun5711/taskapi/internal/idgen"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
	"github.com/Varun5711/taskapi/internal/redis"
	"github.com/Varun5711/taskapi/internal/server"
	"github.com/Varun5711/taskapi/internal/service"
	"github.com/Varun5711/taskapi/internal/storage"
)

const eventStreamMaxLen = 100000

func main() {
	log := logger.New("task-api")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	if cfg.UsingDefaultSecret() {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	idGen, err := idgen.NewGenerator(cfg.Snowflake.DatacenterID, cfg.Snowflake.WorkerID)
	if err != nil {
		log.Fatal("Failed to create ID generator: %v", err)
	}

	var (
		limiter     middleware.Limiter
		publisher   events.Publisher = events.NopPublisher{}
		redisHealth handlers.Pinger
	)

	if cfg.RedisEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := redis.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		redisHealth = redisClient

		limiter = middleware.NewRedisLimiter(redisClient.GetClient(), cfg.RateLimit.Requests, cfg.RateLimit.Window)
		publisher = events.NewStreamPublisher(redisClient.GetClient(), cfg.Redis.StreamName, eventStreamMaxLen)
		log.Info("Redis rate limiting and task events enabled (%s, stream %s)", cfg.Redis.Addr, cfg.Redis.StreamName)
	} else {
		limiter = middleware.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Clients)
		log.Info("REDIS_ADDR not set; using in-process rate limiting, task events disabled")
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	userService := service.NewUserService(storage.NewUserStorage(), jwtManager, cfg.Auth.BcryptCost, log.Named("user-service"))
	taskService := service.NewTaskService(storage.NewMemoryStorage(), publisher, log.Named("task-service"))

	handler := server.New(server.Deps{
		APIPrefix:   cfg.Server.APIPrefix,
		Environment: cfg.Server.Environment,
		Users:       userService,
		Tasks:       taskService,
		Analytics:   analytics.NewService(taskService),
		Limiter:     limiter,
		RequestIDs:  idGen,
		Redis:       redisHealth,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Listening on :%s (%s, prefix %s)", cfg.Server.Port, cfg.Server.Environment, cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Server error: %v", err)
		return
	case sig := <-quit:
		log.Info("Received %s, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed: %v", err)
		return
	}

	log.Info("Server stopped")
}
