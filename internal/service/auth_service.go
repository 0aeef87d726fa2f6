package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"choreshare/internal/models"
	"choreshare/internal/repository"
	"choreshare/internal/security"
	"choreshare/internal/validation"
)

// AuthService handles registration, login and session validation
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
	logger          *slog.Logger
}

// LoginResult is a new session plus an equivalent bearer token
type LoginResult struct {
	Session *models.Session
	User    *models.User
	Token   string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, sessionDuration time.Duration, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		logger:          logger,
	}
}

// Register creates a new user account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race with a concurrent registration
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.sessionDuration)
	session, err := s.userRepo.CreateSession(security.GenerateSessionID(), user.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, session.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Session: session, User: user, Token: token}, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		if err := s.userRepo.DeleteSession(sessionID); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// ValidateToken verifies a bearer token and the session it is bound to, and
// returns the user and session ID
func (s *AuthService) ValidateToken(token string) (*models.User, string, error) {
	userID, sessionID, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			return nil, "", ErrSessionNotFound
		}
		return nil, "", err
	}

	user, err := s.ValidateSession(sessionID)
	if err != nil {
		return nil, "", err
	}
	if user.ID != userID {
		return nil, "", ErrSessionNotFound
	}
	return user, sessionID, nil
}

// Logout invalidates a session and any token issued for it
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns how many went
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}
