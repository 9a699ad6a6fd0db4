// @title                       Task Manager API
// @version                     1.0
// @description                 Personal task manager with JWT sessions.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/taskflow/task-api/internal/api"
	"github.com/taskflow/task-api/internal/api/handler"
	"github.com/taskflow/task-api/internal/core/service"
	"github.com/taskflow/task-api/internal/infrastructure/config"
	mongostore "github.com/taskflow/task-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskflow/task-api/internal/infrastructure/db/redis"
	"github.com/taskflow/task-api/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "task-api",
		Env:     cfg.Env,
	})

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	userRepo := mongostore.NewUserRepository(db)
	taskRepo := mongostore.NewTaskRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create task indexes")
	}

	// --- Services ---
	authService := service.NewAuthService(
		userRepo,
		redisstore.NewRevocationStore(rdb),
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTExpire,
		log.With().Str("component", "auth").Logger(),
	)
	taskService := service.NewTaskService(taskRepo, log.With().Str("component", "tasks").Logger())

	deps := api.Deps{
		AuthService: authService,
		TaskService: taskService,
		HealthChecks: map[string]handler.Check{
			"mongodb": mongostore.Ping(mongoClient),
			"redis":   redisstore.Ping(rdb),
		},
		ClientURL:     cfg.ClientURL,
		SecureCookies: cfg.IsProduction(),
		Logger:        log,
	}
	if cfg.RateLimit.Max > 0 {
		deps.RateLimiter = redisstore.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Storage is closed only after the server has drained in-flight requests.
	drained := make(chan struct{})
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			defer close(drained)
			return e.Shutdown(ctx)
		},
		"mongodb": afterDrain(drained, mongoClient.Disconnect),
		"redis": afterDrain(drained, func(context.Context) error {
			return rdb.Close()
		}),
	})

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("shutdown complete")
	os.Exit(exitCode)
}

func afterDrain(drained <-chan struct{}, op gfshutdown.Operation) gfshutdown.Operation {
	return func(ctx context.Context) error {
		select {
		case <-drained:
			return op(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
