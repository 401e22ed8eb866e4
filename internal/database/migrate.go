package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"vocab-quiz/database/migrations"
	"vocab-quiz/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Direction selects whether migrations are applied or reverted.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction flag value.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", fmt.Errorf("invalid migration direction %q (want up or down)", s)
	}
}

// Migrate applies (Up) or reverts all (Down) embedded migrations for the connection's driver.
func Migrate(ctx context.Context, db *sqlx.DB, direction Direction) error {
	switch db.DriverName() {
	case SQLDriverOracle:
		return NewOracleMigrator(db.DB, migrations.FS, "oracle").Run(ctx, direction)
	case SQLDriverPostgres:
		driver, err := pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
		if err != nil {
			return fmt.Errorf("failed to create pgx migrate driver: %w", err)
		}
		return runGolangMigrate("postgres", "pgx5", driver, direction)
	case SQLDriverSQLite:
		driver, err := sqlitemigrate.WithInstance(db.DB, &sqlitemigrate.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite3 migrate driver: %w", err)
		}
		return runGolangMigrate("sqlite3", "sqlite3", driver, direction)
	default:
		return fmt.Errorf("migrations are not supported for driver %s", db.DriverName())
	}
}

func runGolangMigrate(dir, driverName string, driver migratedb.Driver, direction Direction) error {
	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations %s: %w", dir, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("invalid migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	logger.Get().Info("Migrations completed",
		zap.String("direction", string(direction)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

var migrationFileRe = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_]+)\.(up|down)\.sql$`)

// migrationFile pairs the up and down scripts of one version.
type migrationFile struct {
	Version uint64
	Name    string
	Up      string
	Down    string
}

// OracleMigrator applies golang-migrate style files to Oracle, which golang-migrate has no driver for.
// Applied versions are tracked in schema_migrations.
type OracleMigrator struct {
	db   *sql.DB
	fsys fs.FS
	dir  string
}

func NewOracleMigrator(db *sql.DB, fsys fs.FS, dir string) *OracleMigrator {
	return &OracleMigrator{db: db, fsys: fsys, dir: dir}
}

// Run applies pending migrations in version order (Up) or reverts applied ones newest first (Down).
func (m *OracleMigrator) Run(ctx context.Context, direction Direction) error {
	files, err := loadMigrations(m.fsys, m.dir)
	if err != nil {
		return err
	}
	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	l := logger.Get()
	switch direction {
	case Up:
		for _, f := range files {
			if applied[f.Version] {
				continue
			}
			if err := m.execScript(ctx, f.Up); err != nil {
				return fmt.Errorf("migration %06d_%s up failed: %w", f.Version, f.Name, err)
			}
			if _, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (:1)`, f.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", f.Version, err)
			}
			l.Info("Executed migration", zap.Uint64("version", f.Version), zap.String("name", f.Name))
		}
	case Down:
		for i := len(files) - 1; i >= 0; i-- {
			f := files[i]
			if !applied[f.Version] {
				continue
			}
			if err := m.execScript(ctx, f.Down); err != nil {
				return fmt.Errorf("migration %06d_%s down failed: %w", f.Version, f.Name, err)
			}
			if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = :1`, f.Version); err != nil {
				return fmt.Errorf("failed to unrecord migration %d: %w", f.Version, err)
			}
			l.Info("Reverted migration", zap.Uint64("version", f.Version), zap.String("name", f.Name))
		}
	default:
		return fmt.Errorf("invalid migration direction %q", direction)
	}

	l.Info("Migrations completed successfully", zap.String("direction", string(direction)))
	return nil
}

func (m *OracleMigrator) ensureVersionTable(ctx context.Context) error {
	var count int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check schema_migrations table: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = m.db.ExecContext(ctx, `CREATE TABLE schema_migrations (
    version    NUMBER(19) PRIMARY KEY,
    applied_at TIMESTAMP WITH TIME ZONE DEFAULT SYSTIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func (m *OracleMigrator) appliedVersions(ctx context.Context) (map[uint64]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[uint64]bool)
	for rows.Next() {
		var v uint64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *OracleMigrator) execScript(ctx context.Context, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// loadMigrations reads dir and returns migrations sorted by version.
func loadMigrations(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory %s: %w", dir, err)
	}

	byVersion := make(map[uint64]*migrationFile)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", entry.Name(), err)
		}
		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", entry.Name(), err)
		}

		f, ok := byVersion[version]
		if !ok {
			f = &migrationFile{Version: version, Name: match[2]}
			byVersion[version] = f
		}
		if match[3] == "up" {
			f.Up = string(content)
		} else {
			f.Down = string(content)
		}
	}

	files := make([]migrationFile, 0, len(byVersion))
	for _, f := range byVersion {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// splitStatements splits a script on ';'. go-ora executes one statement per call, without the terminator.
func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
