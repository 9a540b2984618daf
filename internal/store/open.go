package store

import (
	"context"
	"errors"
	"strings"
)

// Config selects and configures the storage backend.
//
// Driver values:
//   - "sqlite" (default): embedded database file at Path
//   - "postgres": PostgreSQL reachable through DSN
type Config struct {
	Driver string
	Path   string
	DSN    string
}

// Open initializes the configured repository.
func Open(ctx context.Context, cfg Config) (Repo, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return OpenSQLite(ctx, cfg.Path)
	case "postgres", "postgresql":
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("postgres driver requires DATABASE_URL")
		}
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
