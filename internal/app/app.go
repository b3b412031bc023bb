package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Thanat-Wut/worddee-api/internal/api"
	"github.com/Thanat-Wut/worddee-api/internal/config"
	"github.com/Thanat-Wut/worddee-api/internal/services"
)

// App owns the store, the word service and the optional rate limiter.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	words   *services.WordService
	limiter api.Limiter
	closers []func() error
}

// New opens the store and builds the services described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repo, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{cfg: cfg, log: logger}
	a.closers = append(a.closers, repo.Close)

	var dict *services.DictionaryService
	if cfg.Dictionary.Enabled {
		dict = services.NewDictionaryService(cfg.Dictionary.URL, cfg.Dictionary.APIKey, cfg.Dictionary.Timeout)
	}
	a.words = services.NewWordService(repo, dict, logger)

	if cfg.RateLimit.Enabled {
		a.limiter = a.newLimiter(cfg.RateLimit)
	}
	return a, nil
}

func (a *App) newLimiter(cfg config.RateLimitConfig) api.Limiter {
	if cfg.RedisAddr == "" {
		l := api.NewMemoryLimiter(cfg.PerMinute, cfg.CleanupInterval)
		a.closers = append(a.closers, func() error { l.Stop(); return nil })
		return l
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, rdb.Close)
	return api.NewRedisLimiter(rdb, cfg.Prefix, cfg.PerMinute)
}

// Words returns the word service.
func (a *App) Words() *services.WordService {
	return a.words
}

// Handler builds the HTTP router.
func (a *App) Handler() http.Handler {
	h := api.NewHandler(a.words, api.ServiceInfo{
		Name:        a.cfg.App.Name,
		Version:     ServiceVersion(a.cfg.App.Version),
		Description: a.cfg.App.Description,
	}, a.log)

	return api.NewRouter(h, api.RouterOptions{
		AdminAPIKey: a.cfg.Auth.AdminAPIKey,
		CORS:        a.cfg.CORS,
		Limiter:     a.limiter,
		Logger:      a.log,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases the store and limiter resources.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
