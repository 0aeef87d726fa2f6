package service

import (
	"fmt"
	"log/slog"
	"strings"

	"choreshare/internal/models"
	"choreshare/internal/repository"
	"choreshare/internal/validation"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 8
	maxInviteAttempts  = 10
)

// FamilyService handles family creation and invite redemption
type FamilyService struct {
	familyRepo    *repository.FamilyRepository
	guard         *MembershipGuard
	newInviteCode func() string
	uniqueCodes   bool
	logger        *slog.Logger
}

// NewFamilyService creates a new family service. With uniqueCodes set,
// generated invite codes are checked against existing families.
func NewFamilyService(familyRepo *repository.FamilyRepository, guard *MembershipGuard, uniqueCodes bool, logger *slog.Logger) (*FamilyService, error) {
	gen, err := nanoid.CustomASCII(inviteCodeAlphabet, inviteCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite code generator: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyService{
		familyRepo:    familyRepo,
		guard:         guard,
		newInviteCode: gen,
		uniqueCodes:   uniqueCodes,
		logger:        logger,
	}, nil
}

// CreateFamily creates a family with creatorID as its first member
func (s *FamilyService) CreateFamily(name string, creatorID int64) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateFamilyName(name); err != nil {
		return nil, err
	}

	code, err := s.inviteCode()
	if err != nil {
		return nil, err
	}

	family, err := s.familyRepo.CreateFamily(name, code, creatorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("family created", "family_id", family.ID, "created_by", creatorID)
	return family, nil
}

func (s *FamilyService) inviteCode() (string, error) {
	code := s.newInviteCode()
	if !s.uniqueCodes {
		return code, nil
	}

	for i := 0; i < maxInviteAttempts; i++ {
		exists, err := s.familyRepo.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		code = s.newInviteCode()
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", maxInviteAttempts)
}

// RedeemInvite adds userID to the family owning code and returns the family
func (s *FamilyService) RedeemInvite(code string, userID int64) (*models.Family, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validation.ValidateInviteCode(code); err != nil {
		return nil, err
	}

	family, err := s.familyRepo.GetFamilyByInviteCode(code)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrInvalidInviteCode
	}

	joined, err := s.familyRepo.JoinFamily(family.ID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, ErrAlreadyMember
	}

	s.logger.Info("invite redeemed", "family_id", family.ID, "user_id", userID)
	return family, nil
}

// ListFamiliesFor returns the families userID belongs to
func (s *FamilyService) ListFamiliesFor(userID int64) ([]models.Family, error) {
	return s.familyRepo.GetUserFamilies(userID)
}

// GetFamilyMembers lists a family's members with their task counts
func (s *FamilyService) GetFamilyMembers(callerID, familyID int64) ([]models.MemberWorkload, error) {
	if err := s.guard.RequireMember(callerID, familyID); err != nil {
		return nil, err
	}
	return s.familyRepo.GetMemberWorkloads(familyID)
}
