package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohammadpnp/household-import/internal/bootstrap"
	"github.com/mohammadpnp/household-import/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := cfg.Logger()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}

	var pool *pgxpool.Pool
	if cfg.Progress.PgNotifyEnabled {
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to create pgx pool")
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Progress.Backend == config.BackendRedis {
		opts, err := redis.ParseURL(cfg.Progress.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	app := bootstrap.NewApp(bootstrap.Dependencies{
		Config: cfg,
		DB:     db,
		Pool:   pool,
		Redis:  redisClient,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	app.Runner.Start(workerCtx)
	if app.Listener != nil {
		go func() {
			if err := app.Listener.Run(workerCtx); err != nil {
				logger.WithError(err).Error("progress listener stopped")
			}
		}()
	}

	go func() {
		logger.WithField("addr", cfg.Address()).Info("http server starting")
		if err := app.Server.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	app.Runner.Wait()
	logger.Info("server stopped")
}
