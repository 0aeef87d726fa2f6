package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"choreshare/internal/config"
	"choreshare/internal/database"
	"choreshare/internal/handlers"
	"choreshare/internal/lock"
	"choreshare/internal/repository"
	"choreshare/internal/security"
	"choreshare/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection established", "type", cfg.DatabaseType)

	if cfg.MigrationsPath != "" {
		err = db.RunMigrationsFrom(cfg.MigrationsPath)
	} else {
		err = db.RunMigrations()
	}
	if err != nil {
		return err
	}
	logger.Info("migrations completed")

	rdb, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	localLimiter := security.NewLocalRateLimiter(cfg.RateLimit, time.Minute)
	var locker lock.Locker = lock.NewLocalLocker()
	var limiter security.RateLimiter = localLimiter
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "choreshare:lock:", 30*time.Second, logger)
		limiter = security.NewRedisRateLimiter(rdb, "choreshare:rate:", cfg.RateLimit, time.Minute)
		logger.Info("using redis for family locks and rate limits", "addr", rdb.Options().Addr)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = randomSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	// Initialize services
	guard := service.NewMembershipGuard(familyRepo)
	authService := service.NewAuthService(userRepo, security.NewTokenIssuer(jwtSecret), cfg.SessionDuration, logger)
	familyService, err := service.NewFamilyService(familyRepo, guard, cfg.UniqueInviteCodes, logger)
	if err != nil {
		return err
	}
	taskService := service.NewTaskService(taskRepo, familyRepo, userRepo, templateRepo, guard, locker, service.TaskServiceOptions{
		Defaults:         cfg.Tasks,
		StrictAssignment: cfg.StrictAssignment,
		Logger:           logger,
	})

	// Initialize handlers
	csrf := security.NewCSRFGenerator(jwtSecret)
	router := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter),
		Auth:       handlers.NewAuthHandler(authService, csrf),
		Family:     handlers.NewFamilyHandler(familyService),
		Task:       handlers.NewTaskHandler(taskService),
		DB:         db,
		Logger:     logger,
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupExpiredSessions(ctx, authService, logger)
	if rdb == nil {
		go localLimiter.Run(ctx, 10*time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRedisClient connects to REDIS_URL, or returns nil when it is unset
func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions()
			if err != nil {
				logger.Error("failed to clean up expired sessions", "error", err)
				continue
			}
			logger.Info("expired sessions cleaned up", "count", n)
		}
	}
}
