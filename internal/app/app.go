package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/config"
	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/store"
	"github.com/vovakirdan/polychat-server/internal/store/sqlite"
	"github.com/vovakirdan/polychat-server/internal/translate"
	"github.com/vovakirdan/polychat-server/internal/translate/cache"
	transporthttp "github.com/vovakirdan/polychat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	relay           *core.Relay
	store           store.Store
	memCache        *cache.Memory
	redisCache      *cache.Redis
	sweepInterval   time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	// Initialize database store
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		sweepInterval:   cfg.Translation.Cache.SweepInterval,
		log:             logger,
	}

	tc, err := a.buildCache(ctx, cfg.Translation.Cache)
	if err != nil {
		a.cleanup()
		return nil, err
	}

	// Per-call deadlines come from the service; the client only bounds stragglers.
	httpClient := &stdhttp.Client{Timeout: 2 * cfg.Translation.Timeout}
	mirrors, fallback := translate.HTTPProviders(
		cfg.Translation.Mirrors,
		cfg.Translation.FallbackEnabled,
		cfg.Translation.FallbackURL,
		httpClient,
	)
	translator := translate.NewService(translate.Config{
		Mirrors:      mirrors,
		Fallback:     fallback,
		Cache:        tc,
		BaseLanguage: cfg.BaseLanguage,
		Timeout:      cfg.Translation.Timeout,
	}, logger)

	logger.Info().
		Int("mirrors", len(mirrors)).
		Bool("fallback", fallback != nil).
		Str("cache", cfg.Translation.Cache.Backend).
		Msg("translation configured")

	registry := core.NewRegistry(cfg.BaseLanguage)
	a.relay = core.NewRelay(registry, st, st, translator, core.RelayConfig{
		BaseLanguage: cfg.BaseLanguage,
		FanoutLimit:  cfg.Relay.FanoutLimit,
	}, logger)
	a.server = transporthttp.NewServer(a.relay, registry, st, cfg, logger)

	return a, nil
}

func (a *App) buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.CacheBackendRedis:
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.TTL, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.redisCache = rc
		a.log.Info().Msg("redis translation cache connected")
		return rc, nil
	case config.CacheBackendMemory, "":
		a.memCache = cache.NewMemory(cfg.TTL)
		return a.memCache, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	if a.memCache != nil && a.sweepInterval > 0 {
		go a.memCache.RunSweeper(ctx, a.sweepInterval)
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup stops the relay and waits for in-flight deliveries, then closes the
// store and cache. Run has already shut the server down, which cancels live
// WebSocket handlers.
func (a *App) cleanup() {
	if a.relay != nil {
		a.relay.Close()
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis cache")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
