package database

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var embeddedMigrations embed.FS

// RunMigrations executes the migrations bundled with the binary for the
// connection's dialect.
func (db *DB) RunMigrations() error {
	sub, err := fs.Sub(embeddedMigrations, path.Join("migrations", db.Dialect.MigrationsSubdir()))
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return db.RunMigrationsFS(sub)
}

// RunMigrationsFrom executes migrations from a directory on disk. The
// directory holds one subdirectory per dialect (sqlite, postgres, mysql).
func (db *DB) RunMigrationsFrom(migrationsPath string) error {
	return db.RunMigrationsFS(os.DirFS(path.Join(migrationsPath, db.Dialect.MigrationsSubdir())))
}

// RunMigrationsFS executes all *.sql files in fsys in lexical order, skipping
// those already recorded in the migrations table.
func (db *DB) RunMigrationsFS(fsys fs.FS) error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, filename := range files {
		hasRun, err := db.hasMigrationRun(filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if err := db.executeMigration(filename, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		slog.Info("migration completed", "file", filename)
	}

	return nil
}

// createMigrationsTable creates the table to track completed migrations
func (db *DB) createMigrationsTable() error {
	_, err := db.Exec(db.Dialect.CreateMigrationsTableQuery())
	return err
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(filename string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs the statements of one migration and records it, all
// in a single transaction.
func (db *DB) executeMigration(filename, content string) error {
	return db.WithTx(func(tx *Tx) error {
		for _, stmt := range splitStatements(content) {
			if _, err := tx.Tx.Exec(stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec("INSERT INTO migrations (filename) VALUES (?)", filename)
		return err
	})
}

// splitStatements splits a migration file on statement-terminating semicolons.
// Not all drivers accept several statements in one Exec.
func splitStatements(content string) []string {
	var statements []string
	for _, part := range strings.Split(content, ";") {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
