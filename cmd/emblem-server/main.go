// Package main is the entry point for the Emblem server.
// Emblem is a digital badge and certification tracking service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/cache/memory"
	"github.com/halcyon-labs/emblem/internal/cache/redis"
	"github.com/halcyon-labs/emblem/internal/config"
	"github.com/halcyon-labs/emblem/internal/handler"
	"github.com/halcyon-labs/emblem/internal/metrics"
	"github.com/halcyon-labs/emblem/internal/repository"
	"github.com/halcyon-labs/emblem/internal/repository/postgres"
	"github.com/halcyon-labs/emblem/internal/repository/sqlite"
	"github.com/halcyon-labs/emblem/internal/service"
	"github.com/halcyon-labs/emblem/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting emblem server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Store
	repos, db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Cache
	var cache repository.Cache
	if cfg.Redis.Enabled {
		redisCache, err := redis.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		memCache := memory.NewCache()
		defer memCache.Stop()
		cache = memCache
	}

	// Icon storage
	icons, iconDir, err := openIconStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Services
	accountService := service.NewAccountService(repos.User, logger)
	badgeService := service.NewBadgeService(repos.Badge, repos.Achievement, cache, icons, logger)
	certService := service.NewCertificationService(repos.Certification, repos.User, logger)
	profileService := service.NewProfileService(repos.User, repos.Achievement, repos.Certification, cache, logger)

	// HTTP surface
	routerConfig := handler.RouterConfig{
		AccountHandler: handler.NewAccountHandler(accountService, profileService, certService, logger),
		BadgeHandler:   handler.NewBadgeHandler(badgeService, logger),
		DB:             db,
		RequestTimeout: cfg.Server.RequestTimeout,
		IconDir:        iconDir,
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		routerConfig.Metrics = metrics.Middleware
	}
	router := handler.NewRouter(routerConfig)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(":" + strconv.Itoa(cfg.Metrics.Port))
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
	return nil
}

// openStore connects to the configured database driver. The embedded
// SQLite driver migrates itself on startup; PostgreSQL schemas are
// managed by emblem-migrate.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
	if cfg.Database.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewRepositories(db), db, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRepositories(db), db, nil
}

// openIconStore builds the configured icon storage backend. The second
// return value is the local directory to serve under /icons/, empty
// for the S3 backend.
func openIconStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.IconStore, string, error) {
	if cfg.Storage.Backend == "s3" {
		store, err := storage.NewS3Store(ctx, cfg.Storage.S3, logger)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}

	store, err := storage.NewFilesystemStore(cfg.Storage.DataDir, cfg.Storage.BaseURL, logger)
	if err != nil {
		return nil, "", err
	}
	return store, cfg.Storage.DataDir, nil
}

// newLogger builds the root logger from config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
