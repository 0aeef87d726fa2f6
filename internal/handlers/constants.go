package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid ID"
	ErrUnauthorized        = "Authentication required"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrAccessDenied        = "Access denied. You are not a member of this family."
	ErrTaskNotFound        = "Task not found or not assigned to you"
	ErrNoFamilyMembers     = "No family members found"
	ErrBalanceConflict     = "Tasks changed while assigning, please retry"
	ErrInvalidInviteCode   = "Invalid invite code"
	ErrAlreadyMember       = "Already member of this family"
	ErrUserExists          = "User already exists"
	ErrInvalidCredentials  = "Invalid credentials"
	ErrTemplateNotFound    = "Task template not found"
	ErrServiceUnavailable  = "Service unavailable"
)
