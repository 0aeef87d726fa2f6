package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tables := []string{"users", "sessions", "families", "family_members", "tasks", "task_templates"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	var templates int
	if err := db.QueryRow("SELECT COUNT(*) FROM task_templates").Scan(&templates); err != nil {
		t.Fatalf("Failed to count templates: %v", err)
	}
	if templates == 0 {
		t.Error("Expected seeded task templates")
	}

	// A second run must be a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

// TestWithTx tests commit and rollback through WithTx
func TestWithTx(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	err := db.WithTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
			"Ada", "ada@example.com", "hash")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTx(func(tx *Tx) error {
		if _, err := tx.Exec("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
			"Bob", "bob@example.com", "hash"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user after rollback, got %d", count)
	}
}

func TestWithTxContextCancelled(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	err := db.WithTxContext(ctx, func(tx *Tx) error {
		if _, err := tx.Exec("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
			"Cy", "cy@example.com", "hash"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("WithTxContext() error = %v, want context.Canceled", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no users after cancellation, got %d", count)
	}
}

// TestForeignKeysEnforced checks the DSN turns foreign keys on for pooled connections
func TestForeignKeysEnforced(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	_, err := db.Exec("INSERT INTO family_members (family_id, user_id) VALUES (?, ?)", 999, 999)
	if err == nil {
		t.Fatal("Expected foreign key violation")
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	_, err := db.Exec("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
		"Concurrent", "concurrent@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRow("SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
				return
			}
			if name != "Concurrent" {
				t.Errorf("Expected name 'Concurrent', got '%s'", name)
			}
		}()
	}
	wg.Wait()
}
