package handlers

import (
	"log/slog"
	"net/http"
)

// Handlers groups everything the router needs
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Family     *FamilyHandler
	Task       *TaskHandler
	DB         Pinger
	Logger     *slog.Logger
}

// NewRouter registers the API routes and wraps them with request logging
func NewRouter(h Handlers) http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Healthz(h.DB))

	// Public routes
	mux.HandleFunc("POST /api/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(h.Auth.Login))

	// Authenticated routes
	mux.HandleFunc("POST /api/logout", m.RequireAuth(m.CSRFProtect(h.Auth.Logout)))
	mux.HandleFunc("POST /api/create-family", m.RequireAuth(m.CSRFProtect(h.Family.CreateFamily)))
	mux.HandleFunc("POST /api/join-family", m.RequireAuth(m.CSRFProtect(m.RateLimit(h.Family.JoinFamily))))
	mux.HandleFunc("GET /api/families", m.RequireAuth(h.Family.ListFamilies))
	mux.HandleFunc("GET /api/family/{id}/members", m.RequireAuth(h.Family.Members))
	mux.HandleFunc("GET /api/task-templates", m.RequireAuth(h.Task.Templates))

	mux.HandleFunc("GET /api/family/{id}/tasks", m.RequireAuth(h.Task.ListTasks))
	mux.HandleFunc("POST /api/family/{id}/tasks", m.RequireAuth(m.CSRFProtect(h.Task.CreateTask)))
	mux.HandleFunc("PUT /api/tasks/{id}/assign", m.RequireAuth(m.CSRFProtect(h.Task.AssignTask)))
	mux.HandleFunc("PUT /api/tasks/{id}/complete", m.RequireAuth(m.CSRFProtect(h.Task.CompleteTask)))
	mux.HandleFunc("POST /api/family/{id}/random-assign", m.RequireAuth(m.CSRFProtect(h.Task.RandomAssign)))

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Logging(logger, mux)
}
