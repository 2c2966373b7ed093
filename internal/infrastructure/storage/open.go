package storage

import (
	"context"
	"fmt"

	"TechPortfolio/internal/config"
)

// Open selects the backend named by cfg.Driver and ensures the schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repository, error) {
	switch cfg.Driver {
	case "postgres":
		repo, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	case "sqlite3", "":
		return OpenSQLite(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
