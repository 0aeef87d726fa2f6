package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN opens every transaction with BEGIN IMMEDIATE so writers serialize on the
// database lock, and turns foreign keys on for each pooled connection.
func (d *SQLiteDialect) DSN(config DialectConfig) (string, error) {
	if config.Path == "" {
		return "", errors.New("DB_PATH is required for sqlite")
	}
	params := "_txlock=immediate&_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(config.Path, "?") {
		return config.Path + "&" + params, nil
	}
	return config.Path + "?" + params, nil
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

// AfterOpen switches the database to WAL so readers do not block the writer.
// The journal mode is persistent, so one connection is enough.
func (d *SQLiteDialect) AfterOpen(db *sql.DB) error {
	_, err := db.Exec("PRAGMA journal_mode=WAL;")
	return err
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

// LockClause is empty: SQLite has no row locks and immediate transactions
// already hold the write lock.
func (d *SQLiteDialect) LockClause() string {
	return ""
}

func (d *SQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
