package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	ServerPort      string        `env:"PORT" envDefault:"8080"`
	DatabaseType    string        `env:"DB_TYPE" envDefault:"sqlite"`
	DatabasePath    string        `env:"DB_PATH" envDefault:"./choreshare.db"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH"`
	DBMaxOpenConns  int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns  int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	JWTSecret       string        `env:"JWT_SECRET"`
	RedisURL        string        `env:"REDIS_URL"`
	RateLimit       int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`

	// StrictAssignment rejects assignees that are not members of the task's family.
	StrictAssignment bool `env:"STRICT_ASSIGNMENT" envDefault:"false"`
	// UniqueInviteCodes regenerates invite codes that collide with an existing family.
	UniqueInviteCodes bool `env:"UNIQUE_INVITE_CODES" envDefault:"false"`

	Tasks TaskDefaults `envPrefix:"TASK_"`
}

// TaskDefaults are applied when a task is created without a difficulty or duration.
type TaskDefaults struct {
	Difficulty    int `env:"DEFAULT_DIFFICULTY" envDefault:"3"`
	EstimatedDays int `env:"DEFAULT_ESTIMATED_DAYS" envDefault:"1"`
	MinDifficulty int `env:"MIN_DIFFICULTY" envDefault:"1"`
	MaxDifficulty int `env:"MAX_DIFFICULTY" envDefault:"5"`
}

// DefaultTaskDefaults returns the documented task defaults: difficulty 3 on a 1-5 scale, due in one day.
func DefaultTaskDefaults() TaskDefaults {
	return TaskDefaults{
		Difficulty:    3,
		EstimatedDays: 1,
		MinDifficulty: 1,
		MaxDifficulty: 5,
	}
}

// Validate checks that the defaults are self-consistent
func (d TaskDefaults) Validate() error {
	if d.MinDifficulty > d.MaxDifficulty {
		return fmt.Errorf("task difficulty range is empty: %d > %d", d.MinDifficulty, d.MaxDifficulty)
	}
	if d.Difficulty < d.MinDifficulty || d.Difficulty > d.MaxDifficulty {
		return fmt.Errorf("default difficulty %d outside [%d, %d]", d.Difficulty, d.MinDifficulty, d.MaxDifficulty)
	}
	if d.EstimatedDays < 0 {
		return fmt.Errorf("default estimated days must not be negative: %d", d.EstimatedDays)
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Tasks.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
