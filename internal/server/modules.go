package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/cache"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/base"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/browse"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/config"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/logger"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/redis"
)

// Module wires the whole service.
var Module = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),
	InfrastructureModule,
	ClientsModule,
	ServicesModule,
	HTTPServerModule,
	fx.Invoke(StartHTTPServer),
)

// InfrastructureModule provides configuration, logging and the result cache.
var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		NewAppConfig,
		NewAppLogger,
		NewCacheStore,
	),
)

// ClientsModule provides upstream clients.
var ClientsModule = fx.Module("clients",
	fx.Provide(
		NewBrowseClient,
	),
)

// ServicesModule provides the comps engine.
var ServicesModule = fx.Module("services",
	fx.Provide(
		NewEngine,
		NewTokenProvider,
	),
)

// HTTPServerModule provides the HTTP server.
var HTTPServerModule = fx.Module("http_server",
	fx.Provide(
		NewHTTPHandler,
	),
)

func NewAppConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func NewAppLogger(cfg *config.Config, lifecycle fx.Lifecycle) (*zap.Logger, error) {
	if err := logger.Init(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync on a terminal stdout returns EINVAL; nothing to act on.
			_ = logger.Sync()
			return nil
		},
	})
	return logger.Get(), nil
}

// NewCacheStore picks the result cache backend from cache.backend.
func NewCacheStore(cfg *config.Config, log *zap.Logger, lifecycle fx.Lifecycle) (comps.ResultCache, error) {
	opts := cache.Options{TTL: cfg.Cache.TTL, MaxEntries: cfg.Cache.MaxEntries}

	if cfg.Cache.Backend != "redis" {
		store := cache.NewMemoryStore(opts)
		if interval := cfg.Cache.CleanupInterval; interval > 0 {
			runCleanup(lifecycle, store, interval)
		}
		log.Info("using in-memory result cache",
			zap.Duration("ttl", opts.TTL),
			zap.Int("max_entries", opts.MaxEntries),
			zap.Duration("cleanup_interval", cfg.Cache.CleanupInterval),
		)
		return store, nil
	}

	client, err := redis.NewClientFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	log.Info("using redis result cache",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
		zap.Duration("ttl", opts.TTL),
	)
	return cache.NewRedisStore(client, opts, log.Named("cache")), nil
}

// runCleanup sweeps expired entries while the app runs.
func runCleanup(lifecycle fx.Lifecycle, store *cache.MemoryStore, interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				store.RunCleanup(ctx, interval)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func NewBrowseClient(cfg *config.Config) browse.Searcher {
	up := cfg.Upstream
	return browse.NewClient(browse.Options{
		Options: base.Options{
			BaseURL:    up.BaseURL,
			Timeout:    up.Timeout,
			RetryCount: up.RetryCount,
		},
		Marketplace:       up.Marketplace,
		Sort:              up.Sort,
		RequestsPerSecond: up.RequestsPerSecond,
		Burst:             up.Burst,
		BreakerFailures:   up.BreakerFailures,
		BreakerTimeout:    up.BreakerTimeout,
	})
}

func NewEngine(searcher browse.Searcher, store comps.ResultCache, cfg *config.Config, log *zap.Logger) (*comps.Engine, error) {
	engine, err := comps.NewEngine(searcher,
		comps.WithCache(store),
		comps.WithConcurrency(cfg.Engine.Concurrency),
		comps.WithLogger(log.Named("comps")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comps engine: %w", err)
	}
	return engine, nil
}

// NewTokenProvider prefers the caller's bearer header and falls back to
// upstream.token when one is configured.
func NewTokenProvider(cfg *config.Config) TokenProvider {
	return BearerTokenProvider{Fallback: cfg.Upstream.Token}
}

func NewHTTPHandler(engine *comps.Engine, tokens TokenProvider, cfg *config.Config, log *zap.Logger) *http.Server {
	srv := NewCompsServer(engine, tokens, log.Named("http"))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Info("http server configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(srv.Routes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func StartHTTPServer(httpServer *http.Server, log *zap.Logger, lifecycle fx.Lifecycle, shutdowner fx.Shutdowner) {
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting http server", zap.String("addr", httpServer.Addr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", zap.Error(err))
					if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
						log.Error("application shutdown failed", zap.Error(shutdownErr))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping http server")
			return httpServer.Shutdown(ctx)
		},
	})
}
