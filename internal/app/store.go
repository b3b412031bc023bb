package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Thanat-Wut/worddee-api/internal/config"
	"github.com/Thanat-Wut/worddee-api/internal/repository"
)

// OpenStore applies the baseline schema when enabled and opens the
// configured word store.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repository.WordRepository, error) {
	driver := repository.Driver(cfg.Driver)
	if !driver.IsValid() {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.AutoMigrate {
		if err := repository.ApplySchema(driver, cfg.URL); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "schema applied", slog.String("driver", cfg.Driver))
	}

	switch driver {
	case repository.DriverSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLiteRepository(db), nil
	default:
		pool, err := repository.NewPool(ctx, cfg.URL, repository.PoolConfig{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresRepository(pool), nil
	}
}
