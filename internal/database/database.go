package database

import (
	"fmt"
	"strings"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"
)

// database/sql driver names
const (
	SQLDriverOracle   = "oracle"
	SQLDriverPostgres = "pgx"
	SQLDriverSQLite   = "sqlite3"
)

func init() {
	// go-ora takes :name placeholders; sqlx does not know the driver name by default.
	sqlx.BindDriver(SQLDriverOracle, sqlx.NAMED)
}

// DriverName maps the configured driver to the registered database/sql driver name.
func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverOracle, "":
		return SQLDriverOracle, nil
	case config.DriverPostgres:
		return SQLDriverPostgres, nil
	case config.DriverSQLite:
		return SQLDriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported db driver: %s", driver)
	}
}

// Open connects to the configured database, pings it and applies pool settings.
func Open(cfg config.DBConfig) (*sqlx.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	// sqlx.Connect opens and pings.
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	Configure(db, cfg)

	logger.Get().Info("Successfully connected to database",
		zap.String("driver", driverName),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.DBName),
	)
	return db, nil
}

// Configure applies pool limits and, for Oracle, maps lowercase db tags onto upper-case column names.
func Configure(db *sqlx.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if db.DriverName() == SQLDriverOracle {
		db.Mapper = reflectx.NewMapperTagFunc("db", strings.ToUpper, strings.ToUpper)
	}
}
