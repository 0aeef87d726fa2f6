package models

import "time"

// TaskState is the lifecycle state of a task, derived from its assignee and
// completion flag.
type TaskState string

const (
	TaskUnassigned TaskState = "unassigned"
	TaskAssigned   TaskState = "assigned"
	TaskCompleted  TaskState = "completed"
)

// Task is a chore owned by a family
type Task struct {
	ID            int64      `json:"id"`
	FamilyID      int64      `json:"family_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    int        `json:"difficulty"`
	EstimatedDays int        `json:"estimated_days"`
	AssignedTo    *int64     `json:"assigned_to"`
	CreatedBy     int64      `json:"created_by"`
	DueDate       time.Time  `json:"due_date"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`

	AssignedToName string `json:"assigned_to_name,omitempty"` // Populated via JOIN
	CreatedByName  string `json:"created_by_name,omitempty"`  // Populated via JOIN
}

// State reports where the task is in its lifecycle
func (t *Task) State() TaskState {
	switch {
	case t.IsCompleted:
		return TaskCompleted
	case t.AssignedTo != nil:
		return TaskAssigned
	default:
		return TaskUnassigned
	}
}

// IsAssignedTo reports whether userID is the task's current assignee
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// DueDateFor returns the due date of a task created at createdAt that takes
// estimatedDays days. Due dates are whole UTC days.
func DueDateFor(createdAt time.Time, estimatedDays int) time.Time {
	y, m, d := createdAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, estimatedDays)
}

// DaysLeft returns the number of whole days from now until the due date.
// Overdue tasks report a negative value.
func (t *Task) DaysLeft(now time.Time) int {
	today := DueDateFor(now, 0)
	return int(t.DueDate.Sub(today).Hours() / 24)
}

// TaskTemplate is a read-only catalog entry used to pre-fill task creation
type TaskTemplate struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	SuggestedDifficulty int    `json:"difficulty"`
	EstimatedDays       int    `json:"estimated_days"`
}

var difficultyLabels = []string{"", "Very Easy", "Easy", "Medium", "Hard", "Very Hard"}

// DifficultyLabel returns the display label for a difficulty on the 1-5 scale
func DifficultyLabel(difficulty int) string {
	if difficulty < 1 || difficulty >= len(difficultyLabels) {
		return ""
	}
	return difficultyLabels[difficulty]
}
