package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want %q", cfg.DatabaseType, "sqlite")
	}
	if cfg.SessionDuration != 24*time.Hour {
		t.Errorf("SessionDuration = %v, want %v", cfg.SessionDuration, 24*time.Hour)
	}
	if cfg.RateLimit != 20 {
		t.Errorf("RateLimit = %d, want 20", cfg.RateLimit)
	}
	if cfg.DBMaxOpenConns != 25 || cfg.DBMaxIdleConns != 5 || cfg.DBConnLifetime != 5*time.Minute {
		t.Errorf("pool = %d/%d/%v", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnLifetime)
	}
	if cfg.StrictAssignment || cfg.UniqueInviteCodes {
		t.Error("strictness options should default to off")
	}
	if cfg.Tasks != DefaultTaskDefaults() {
		t.Errorf("Tasks = %+v, want %+v", cfg.Tasks, DefaultTaskDefaults())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STRICT_ASSIGNMENT", "true")
	t.Setenv("TASK_DEFAULT_DIFFICULTY", "2")
	t.Setenv("TASK_DEFAULT_ESTIMATED_DAYS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if !cfg.StrictAssignment {
		t.Error("StrictAssignment should be true")
	}
	if cfg.Tasks.Difficulty != 2 || cfg.Tasks.EstimatedDays != 7 {
		t.Errorf("Tasks = %+v", cfg.Tasks)
	}
}

func TestTaskDefaultsValidate(t *testing.T) {
	tests := []struct {
		name     string
		defaults TaskDefaults
		wantErr  bool
	}{
		{"documented defaults", DefaultTaskDefaults(), false},
		{"empty range", TaskDefaults{Difficulty: 3, MinDifficulty: 5, MaxDifficulty: 1}, true},
		{"default above range", TaskDefaults{Difficulty: 9, MinDifficulty: 1, MaxDifficulty: 5}, true},
		{"negative days", TaskDefaults{Difficulty: 3, EstimatedDays: -1, MinDifficulty: 1, MaxDifficulty: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.defaults.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
