package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"work-tracker.com/work-tracker/internal/cache"
	config "work-tracker.com/work-tracker/internal/configs"
	httpapi "work-tracker.com/work-tracker/internal/http"
	repository "work-tracker.com/work-tracker/internal/repositories"
	"work-tracker.com/work-tracker/internal/services"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the sync server",
	Long:  "Starts the HTTP sync server that stores one snapshot per user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := config.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		stateRepo := repository.NewStateRepository(db)

		var snapshots cache.SnapshotCache
		if cfg.RedisAddr != "" {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			snapshots = cache.NewRedisSnapshotCache(
				redisClient,
				cfg.CacheKeyPrefix,
				time.Duration(cfg.CacheTTLSeconds)*time.Second,
			)
			logger.WithField("addr", cfg.RedisAddr).Info("snapshot cache enabled")
		}

		syncService := services.NewSyncService(stateRepo, snapshots, logger)

		stats := services.NewStatsService(
			stateRepo,
			logger,
			time.Duration(cfg.StatsIntervalSeconds)*time.Second,
		)
		stats.Start()

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true

		handler := httpapi.NewHandler(syncService)
		httpapi.Register(e, handler, logger, cfg.RateLimit)

		go func() {
			logger.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("server stopped")
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(ctx)
		stats.Shutdown(ctx)

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		logger.Info("HTTP server and stats loop shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
