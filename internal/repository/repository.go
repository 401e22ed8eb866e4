package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
	DriverName() string
}

// paginate returns the row-limiting clause for the driver and its arguments.
// Oracle and PostgreSQL share the SQL:2008 form; SQLite only knows LIMIT/OFFSET.
func paginate(driverName string, offset, limit int) (string, []interface{}) {
	if driverName == "sqlite3" {
		return " LIMIT ? OFFSET ?", []interface{}{limit, offset}
	}
	return " OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", []interface{}{offset, limit}
}

// isUniqueViolation reports whether err was raised by a unique constraint or index.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	// go-ora: ORA-00001 unique constraint violated
	return strings.Contains(err.Error(), "ORA-00001")
}
