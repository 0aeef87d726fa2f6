package handlers

import (
	"net/http"
	"strconv"

	"choreshare/internal/service"
)

// FamilyHandler serves family creation, invites and membership listings
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// CreateFamily creates a family with the caller as its first member
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	caller := GetCallerFromContext(r.Context())
	family, err := h.familyService.CreateFamily(req.Name, caller.User.ID)
	if err != nil {
		respondServiceError(w, err, "failed to create family")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"family_id":   family.ID,
		"invite_code": family.InviteCode,
	})
}

// JoinFamily redeems an invite code for the caller
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	caller := GetCallerFromContext(r.Context())
	family, err := h.familyService.RedeemInvite(req.InviteCode, caller.User.ID)
	if err != nil {
		respondServiceError(w, err, "failed to join family")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"family_id": family.ID,
	})
}

// ListFamilies lists the caller's families
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())
	families, err := h.familyService.ListFamiliesFor(caller.User.ID)
	if err != nil {
		respondServiceError(w, err, "failed to list families")
		return
	}
	respondJSON(w, http.StatusOK, families)
}

// Members lists a family's members with their task counts
func (h *FamilyHandler) Members(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	caller := GetCallerFromContext(r.Context())
	members, err := h.familyService.GetFamilyMembers(caller.User.ID, familyID)
	if err != nil {
		respondServiceError(w, err, "failed to list family members")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}
