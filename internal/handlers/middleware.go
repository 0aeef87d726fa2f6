package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"choreshare/internal/models"
	"choreshare/internal/security"
	"choreshare/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const callerContextKey ContextKey = "caller"

// Caller is the authenticated identity of a request
type Caller struct {
	User      *models.User
	SessionID string
	// ViaCookie is set when the session came from the cookie rather than a
	// bearer token; such requests must carry a CSRF token to mutate state.
	ViaCookie bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// RequireAuth resolves the caller from a bearer token or the session cookie
// and rejects the request with 401 when neither is valid
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var caller *Caller

		if token := security.BearerToken(r); token != "" {
			user, sessionID, err := m.authService.ValidateToken(token)
			if err != nil {
				respondServiceError(w, err, "failed to validate token")
				return
			}
			caller = &Caller{User: user, SessionID: sessionID}
		} else {
			cookie, err := r.Cookie(security.SessionCookieName)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
				return
			}
			user, err := m.authService.ValidateSession(cookie.Value)
			if err != nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
				respondServiceError(w, err, "failed to validate session")
				return
			}
			caller = &Caller{User: user, SessionID: cookie.Value, ViaCookie: true}
		}

		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect requires a valid CSRF header on cookie-authenticated requests.
// It must run inside RequireAuth.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := GetCallerFromContext(r.Context())
		if caller == nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		if caller.ViaCookie && !m.csrf.ValidateRequest(r, caller.SessionID) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP. A limiter failure lets the
// request through.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision, err := m.limiter.Allow(r.Context(), "ip:"+security.GetClientIP(r))
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err)
			next(w, r)
			return
		}
		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request with its status and duration
func Logging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// GetCallerFromContext retrieves the authenticated caller from the request context
func GetCallerFromContext(ctx context.Context) *Caller {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	if !ok {
		return nil
	}
	return caller
}
