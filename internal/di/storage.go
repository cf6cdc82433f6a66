package di

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/internal/runtimeconfig"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// OpenBunDB opens the configured database and wraps it with the matching
// bun dialect. A nil logger is allowed.
func OpenBunDB(cfg runtimeconfig.StorageConfig, logger interfaces.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, runtimeconfig.ErrStorageDSNRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case runtimeconfig.StorageDriverSQLite, "":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		logger.Info("storage.open", "driver", runtimeconfig.StorageDriverSQLite)
		return db, nil
	case runtimeconfig.StorageDriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		logger.Info("storage.open", "driver", runtimeconfig.StorageDriverPostgres)
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		logger.Error("storage.open.failed", "driver", cfg.Driver)
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Driver)
	}
}
