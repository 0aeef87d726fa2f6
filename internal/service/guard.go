package service

import (
	"fmt"

	"choreshare/internal/repository"
)

// MembershipGuard decides whether a user may act on a family's data
type MembershipGuard struct {
	familyRepo *repository.FamilyRepository
}

// NewMembershipGuard creates a new membership guard
func NewMembershipGuard(familyRepo *repository.FamilyRepository) *MembershipGuard {
	return &MembershipGuard{familyRepo: familyRepo}
}

// Authorize reports whether userID is a member of familyID. A family that
// does not exist yields false, the same as one the user never joined.
func (g *MembershipGuard) Authorize(userID, familyID int64) (bool, error) {
	ok, err := g.familyRepo.IsFamilyMember(userID, familyID)
	if err != nil {
		return false, fmt.Errorf("failed to verify family access: %w", err)
	}
	return ok, nil
}

// RequireMember returns ErrAccessDenied unless userID is a member of familyID.
// Storage errors are returned as-is so the caller fails closed.
func (g *MembershipGuard) RequireMember(userID, familyID int64) error {
	ok, err := g.Authorize(userID, familyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}
