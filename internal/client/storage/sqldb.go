package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Supported backends.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// cleanInterval is how often expired SQL rows are purged.
const cleanInterval = time.Minute

// ParseDSN maps a store DSN onto a driver and a driver-specific source.
//
//	""                       -> file, familycart.json
//	"path/to/state.json"     -> file, path/to/state.json
//	"sqlite:path/to/db"      -> sqlite, path/to/db
//	"postgres://..."         -> postgres, the DSN unchanged
func ParseDSN(dsn string) (driver, source string) {
	switch {
	case dsn == "":
		return DriverFile, DefaultFile
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:")
	default:
		return DriverFile, dsn
	}
}

// InitSQL opens a SQL database, verifies the connection and applies migrations.
func InitSQL(driver, source string) (*sql.DB, error) {
	var dialect string
	switch driver {
	case DriverSQLite:
		dialect = "sqlite3"
	case DriverPostgres:
		dialect = "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := migrate(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Open returns the KV selected by dsn and a function releasing it.
// SQL backends also get a background cleaner bound to ctx.
func Open(ctx context.Context, dsn string, log *zap.Logger) (KV, func() error, error) {
	driver, source := ParseDSN(dsn)
	if driver == DriverFile {
		kv, err := NewFileKV(source)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() error { return nil }, nil
	}

	db, err := InitSQL(driver, source)
	if err != nil {
		return nil, nil, err
	}
	StartExpiredCleaner(ctx, db, cleanInterval, log)

	log.Debug("opened sql store", zap.String("driver", driver))
	return NewSQLKV(db), db.Close, nil
}
