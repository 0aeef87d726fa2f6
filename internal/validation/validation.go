package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MaxTitleLength bounds task titles and family names
const MaxTitleLength = 200

// ValidationError represents a validation error on a single input field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a person's name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateFamilyName checks a family name
func ValidateFamilyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "family name is required"}
	}
	if len(name) > MaxTitleLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("family name must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// ValidateTaskTitle checks a task title
func ValidateTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "task title is required"}
	}
	if len(title) > MaxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("task title must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// ValidateDifficulty checks that difficulty lies within [min, max]
func ValidateDifficulty(difficulty, min, max int) error {
	if difficulty < min || difficulty > max {
		return ValidationError{Field: "difficulty", Message: fmt.Sprintf("difficulty must be between %d and %d", min, max)}
	}
	return nil
}

// ValidateEstimatedDays checks a task duration
func ValidateEstimatedDays(days int) error {
	if days < 0 {
		return ValidationError{Field: "estimated_days", Message: "estimated days must not be negative"}
	}
	return nil
}

// ValidateInviteCode checks the shape of an invite code
func ValidateInviteCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ValidationError{Field: "invite_code", Message: "invite code is required"}
	}
	return nil
}
