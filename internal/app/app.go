package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/httpserver"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/redis"
	"github.com/linkdeck/linkdeck/internal/scheduler"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
	linksync "github.com/linkdeck/linkdeck/internal/sync"
	"github.com/linkdeck/linkdeck/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	store        *sqlite.Store
	redisClient  *goredis.Client
	seedReloader *scheduler.SeedReloader
	dedupSweeper *scheduler.DedupSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open sqlite early - fail fast if the database cannot be reached.
	store, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("database initialized", logger.String("dsn", cfg.DatabaseURL))

	// Redis is an optional snapshot cache. When no address is configured
	// every snapshot read goes straight to sqlite.
	var redisClient *goredis.Client
	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		cache = redisstore.NewCache(redisClient, cfg.SnapshotCacheTTL)
		loggerClient.Info("snapshot cache initialized")
	} else {
		loggerClient.Info("redis not configured, snapshot cache disabled")
	}

	catalogSvc := catalog.New(store, cache, loggerClient)
	syncSvc := linksync.NewService(store, catalogSvc, loggerClient)
	promoter := linksync.NewPromoter(store, catalogSvc, loggerClient)

	// Seed reloader keeps the catalog in step with the curated file (if configured).
	var seedReloader *scheduler.SeedReloader
	var seedReloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		seedReloadTrigger = make(chan struct{}, 1)
		seedReloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			catalogSvc,
			loggerClient,
			cfg.SeedReloadInterval,
			seedReloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, catalog is published via API only")
	}

	dedupSweeper := scheduler.NewDedupSweeper(store, loggerClient, cfg.DedupSweepInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		JWTSecret:         []byte(cfg.JWTSecret),
		Store:             store,
		Cache:             cache,
		Catalog:           catalogSvc,
		Sync:              syncSvc,
		Promoter:          promoter,
		SeedReloadTrigger: seedReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		store:        store,
		redisClient:  redisClient,
		seedReloader: seedReloader,
		dedupSweeper: dedupSweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Linkdeck v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Linkdeck %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader (bootstraps the first catalog version when none exists)
	if a.seedReloader != nil {
		if err := a.seedReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.SeedReloadInterval))
	}

	// Start dedup sweeper
	if err := a.dedupSweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start dedup sweeper: %w", err)
	}
	a.logger.Info("dedup sweeper started",
		logger.Duration("interval", a.cfg.DedupSweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.seedReloader != nil {
		a.seedReloader.Stop()
	}
	a.dedupSweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	a.logger.Info("✅ Linkdeck stopped cleanly")
	return nil
}
