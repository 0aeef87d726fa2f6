package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"choreshare/internal/service"
	"choreshare/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "error", err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondServiceError maps an error from the service layer to a status code
// and a message safe to show the caller
func respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithError(w, http.StatusBadRequest, ve.Message, "", nil)
	case errors.Is(err, service.ErrAccessDenied):
		respondWithError(w, http.StatusForbidden, ErrAccessDenied, "", nil)
	case errors.Is(err, service.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, ErrTaskNotFound, "", nil)
	case errors.Is(err, service.ErrTemplateNotFound):
		respondWithError(w, http.StatusNotFound, ErrTemplateNotFound, "", nil)
	case errors.Is(err, service.ErrPreconditionFailed):
		respondWithError(w, http.StatusBadRequest, ErrNoFamilyMembers, "", nil)
	case errors.Is(err, service.ErrConcurrentUpdate):
		respondWithError(w, http.StatusConflict, ErrBalanceConflict, logMsg, err)
	case errors.Is(err, service.ErrInvalidInviteCode):
		respondWithError(w, http.StatusBadRequest, ErrInvalidInviteCode, "", nil)
	case errors.Is(err, service.ErrAlreadyMember):
		respondWithError(w, http.StatusBadRequest, ErrAlreadyMember, "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, ErrUserExists, "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, ErrInvalidCredentials, "", nil)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}
