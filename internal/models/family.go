package models

import "time"

// Family represents a group of users sharing a task pool
type Family struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// FamilyMember represents the relationship between a user and a family
type FamilyMember struct {
	FamilyID int64     `json:"family_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberWorkload is a family member with their task counts in that family
type MemberWorkload struct {
	UserID         int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ActiveTasks    int    `json:"active_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}
