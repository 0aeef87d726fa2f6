package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"choreshare/internal/database"
	"choreshare/internal/models"
)

// FamilyRepository handles database operations for families and memberships
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and adds the creator as a member
func (r *FamilyRepository) CreateFamily(name, inviteCode string, creatorUserID int64) (*models.Family, error) {
	now := time.Now().UTC()
	family := &models.Family{
		Name:       name,
		InviteCode: inviteCode,
		CreatedBy:  creatorUserID,
		CreatedAt:  now,
	}

	err := r.db.WithTx(func(tx *database.Tx) error {
		query := "INSERT INTO families (name, invite_code, created_by, created_at) VALUES (?, ?, ?, ?)"
		familyID, err := tx.ExecReturningID(query, name, inviteCode, creatorUserID, now)
		if err != nil {
			return fmt.Errorf("failed to create family: %w", err)
		}
		family.ID = familyID

		if err := addMember(tx, familyID, creatorUserID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return family, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	return scanFamily(r.db.QueryRow(familySelect+" WHERE id = ?", familyID))
}

// GetFamilyByInviteCode retrieves the family an invite code belongs to.
// Codes are not guaranteed unique; the oldest family wins a collision.
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	return scanFamily(r.db.QueryRow(familySelect+" WHERE invite_code = ? ORDER BY id ASC LIMIT 1", code))
}

// InviteCodeExists reports whether any family already uses code
func (r *FamilyRepository) InviteCodeExists(code string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM families WHERE invite_code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

const familySelect = "SELECT id, name, invite_code, COALESCE(created_by, 0), created_at FROM families"

func scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(&family.ID, &family.Name, &family.InviteCode, &family.CreatedBy, &family.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (r *FamilyRepository) GetUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.invite_code, COALESCE(f.created_by, 0), f.created_at
		FROM families f
		INNER JOIN family_members fm ON f.id = fm.family_id
		WHERE fm.user_id = ?
		ORDER BY f.created_at ASC, f.id ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	families := []models.Family{}
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.InviteCode, &family.CreatedBy, &family.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

// JoinFamily adds userID to familyID unless already a member. It reports
// whether a membership was created.
func (r *FamilyRepository) JoinFamily(familyID, userID int64) (bool, error) {
	joined := false
	err := r.db.WithTx(func(tx *database.Tx) error {
		isMember, err := isMember(tx, userID, familyID)
		if err != nil {
			return err
		}
		if isMember {
			return nil
		}
		err = addMember(tx, familyID, userID, time.Now().UTC())
		if r.db.IsUniqueViolation(err) {
			// a concurrent redeem got there first; postgres has aborted the tx
			return ErrDuplicate
		}
		if err != nil {
			return err
		}
		joined = true
		return nil
	})
	if errors.Is(err, ErrDuplicate) {
		return false, nil
	}
	return joined, err
}

func addMember(q database.DBTX, familyID, userID int64, joinedAt time.Time) error {
	query := "INSERT INTO family_members (family_id, user_id, joined_at) VALUES (?, ?, ?)"
	if _, err := q.Exec(query, familyID, userID, joinedAt); err != nil {
		return fmt.Errorf("add family member: %w", err)
	}
	return nil
}

// IsFamilyMember checks if a user is a member of a family
func (r *FamilyRepository) IsFamilyMember(userID, familyID int64) (bool, error) {
	return isMember(r.db, userID, familyID)
}

func isMember(q database.DBTX, userID, familyID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM family_members WHERE user_id = ? AND family_id = ?"
	var count int
	if err := q.QueryRow(query, userID, familyID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}
	return count > 0, nil
}

// MemberIDs returns the user IDs of a family's members in ascending order.
// q may be a transaction so the read joins a larger unit of work.
func (r *FamilyRepository) MemberIDs(q database.DBTX, familyID int64) ([]int64, error) {
	rows, err := q.Query("SELECT user_id FROM family_members WHERE family_id = ? ORDER BY user_id ASC", familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetMemberWorkloads lists a family's members with their active and completed
// task counts within that family
func (r *FamilyRepository) GetMemberWorkloads(familyID int64) ([]models.MemberWorkload, error) {
	query := `
		SELECT u.id, u.name, u.email,
		       COUNT(CASE WHEN t.is_completed = ? THEN 1 END) AS active_tasks,
		       COUNT(CASE WHEN t.is_completed = ? THEN 1 END) AS completed_tasks
		FROM users u
		INNER JOIN family_members fm ON u.id = fm.user_id
		LEFT JOIN tasks t ON u.id = t.assigned_to AND t.family_id = ?
		WHERE fm.family_id = ?
		GROUP BY u.id, u.name, u.email
		ORDER BY u.id ASC
	`
	rows, err := r.db.Query(query, false, true, familyID, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member workloads: %w", err)
	}
	defer rows.Close()

	members := []models.MemberWorkload{}
	for rows.Next() {
		var m models.MemberWorkload
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.ActiveTasks, &m.CompletedTasks); err != nil {
			return nil, fmt.Errorf("failed to scan member workload: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
