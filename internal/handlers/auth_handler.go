package handlers

import (
	"net/http"

	"choreshare/internal/security"
	"choreshare/internal/service"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		csrf:        csrf,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err, "failed to register user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user_id": user.ID,
		"name":    user.Name,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login starts a session. The session is returned both as a cookie and as a
// bearer token; cookie clients also get the CSRF token for mutating calls.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}

	csrfToken, err := h.csrf.GenerateToken(result.Session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate CSRF token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, result.Session.ID, result.Session.ExpiresAt))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"user_id":    result.User.ID,
		"name":       result.User.Name,
		"token":      result.Token,
		"expires_at": result.Session.ExpiresAt,
		"csrf_token": csrfToken,
	})
}

// Logout ends the caller's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())
	if err := h.authService.Logout(caller.SessionID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to log out", err)
		return
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
