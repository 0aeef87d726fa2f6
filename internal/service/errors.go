package service

import "errors"

var (
	// ErrAccessDenied is returned when the caller is not a member of the
	// family. It is the same whether or not the family exists.
	ErrAccessDenied = errors.New("access denied")
	// ErrTaskNotFound covers both a missing task and a task the caller may
	// not act on.
	ErrTaskNotFound = errors.New("task not found or not authorized")
	// ErrPreconditionFailed is returned when an operation is undefined for the
	// current state, such as balancing a family with no members.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrConcurrentUpdate aborts a balancing pass that lost a task to another writer.
	ErrConcurrentUpdate = errors.New("task changed concurrently")

	ErrFamilyNotFound    = errors.New("family not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrAlreadyMember     = errors.New("already a member of this family")
	ErrTemplateNotFound  = errors.New("task template not found")

	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)
