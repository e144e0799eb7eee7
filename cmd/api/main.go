package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker/internal/cache"
	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/logger"
	"tracker/internal/scheduler"
	"tracker/internal/store"
	"tracker/internal/validator"

	_ "tracker/internal/docs" // Import swagger docs
)

// @title           Tracker API
// @version         1.0
// @description     Personal habit, finance, portfolio and goal tracker.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheStore := cache.NewNoop()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cache.DefaultTTL)
		if err != nil {
			log.Warnf("Redis unavailable, continuing without cache: %v", err)
		} else {
			cacheStore = redisCache
			log.Info("Dashboard cache enabled")
		}
	}
	defer cacheStore.Close()

	validator.Register()

	e := newEngines(store.New(dbManager.DB()))

	if cfg.BackupCron != "" {
		sched, err := scheduler.New(e.backup, cfg.BackupDir, cfg.BackupCron)
		if err != nil {
			return fmt.Errorf("failed to create backup scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if !cfg.AuthEnabled() {
		log.Warn("AUTH_PASSCODE_HASH is not set; the API is open")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, e, cacheStore),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting tracker server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
