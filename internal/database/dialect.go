package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"time"
)

// Dialect captures what differs between the supported SQL backends
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN builds the data source name, adding any parameters the
	// repositories rely on (time parsing, foreign keys, lock mode)
	DSN(config DialectConfig) (string, error)

	// RewriteQuery converts ? placeholders if the driver needs another syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether sql.Result.LastInsertId works
	SupportsLastInsertId() bool

	// AfterOpen runs one-time setup on a freshly opened pool
	AfterOpen(db *sql.DB) error

	// MigrationsSubdir names the migrations directory for this dialect
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// LockClause returns the suffix that takes row locks on a SELECT inside a
	// transaction, or "" when the transaction itself is already exclusive.
	LockClause() string

	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint failure
	IsUniqueViolation(err error) bool
}

// DialectConfig holds connection settings
type DialectConfig struct {
	// Path is the SQLite database file
	Path string
	// URL is the PostgreSQL or MySQL connection string
	URL string

	Pool PoolConfig
}

// PoolConfig sizes the connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool is used when no pool settings are configured
func DefaultPool() PoolConfig {
	return PoolConfig{MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifetime: 5 * time.Minute}
}

func (p PoolConfig) apply(db *sql.DB) {
	if p == (PoolConfig{}) {
		p = DefaultPool()
	}
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(time.Minute)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
