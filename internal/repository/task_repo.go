package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"choreshare/internal/database"
	"choreshare/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx runs fn in a transaction bound to ctx
func (r *TaskRepository) WithTx(ctx context.Context, fn func(q database.DBTX) error) error {
	return r.db.WithTxContext(ctx, func(tx *database.Tx) error {
		return fn(tx)
	})
}

// CreateTask inserts a task and fills in its ID
func (r *TaskRepository) CreateTask(task *models.Task) error {
	query := `
		INSERT INTO tasks (family_id, title, description, difficulty, estimated_days,
		                   assigned_to, created_by, due_date, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.Difficulty, task.EstimatedDays,
		nullableID(task.AssignedTo), task.CreatedBy, task.DueDate, false, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = id
	return nil
}

const taskColumns = `
	t.id, t.family_id, t.title, t.description, t.difficulty, t.estimated_days,
	t.assigned_to, COALESCE(t.created_by, 0), t.due_date, t.is_completed, t.completed_at, t.created_at,
	COALESCE(ua.name, ''), COALESCE(uc.name, '')
`

const taskFrom = `
	FROM tasks t
	LEFT JOIN users ua ON t.assigned_to = ua.id
	LEFT JOIN users uc ON t.created_by = uc.id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var assignedTo sql.NullInt64
	var completedAt sql.NullTime
	err := row.Scan(
		&task.ID, &task.FamilyID, &task.Title, &task.Description, &task.Difficulty, &task.EstimatedDays,
		&assignedTo, &task.CreatedBy, &task.DueDate, &task.IsCompleted, &completedAt, &task.CreatedAt,
		&task.AssignedToName, &task.CreatedByName,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		id := assignedTo.Int64
		task.AssignedTo = &id
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return &task, nil
}

// GetTaskForMember retrieves a task only if userID belongs to the task's
// family. A missing task and a non-member caller both return nil.
func (r *TaskRepository) GetTaskForMember(taskID, userID int64) (*models.Task, error) {
	query := "SELECT " + taskColumns + taskFrom + `
		INNER JOIN family_members fm ON fm.family_id = t.family_id AND fm.user_id = ?
		WHERE t.id = ?
	`
	task, err := scanTask(r.db.QueryRow(query, userID, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListFamilyTasks lists a family's tasks, incomplete first, newest first
func (r *TaskRepository) ListFamilyTasks(familyID int64) ([]models.Task, error) {
	query := "SELECT " + taskColumns + taskFrom + `
		WHERE t.family_id = ?
		ORDER BY t.is_completed ASC, t.created_at DESC, t.id DESC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// AssignTask sets the assignee of a task, overwriting any previous one.
// It reports whether the task exists.
func (r *TaskRepository) AssignTask(taskID, assigneeID int64) (bool, error) {
	result, err := r.db.Exec("UPDATE tasks SET assigned_to = ? WHERE id = ?", assigneeID, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to assign task: %w", err)
	}
	return affected(result)
}

// CompleteTask marks a task completed if it is still open, assigned to userID
// and userID is a member of its family. It reports whether a row changed.
func (r *TaskRepository) CompleteTask(taskID, userID int64, completedAt time.Time) (bool, error) {
	query := `
		UPDATE tasks SET is_completed = ?, completed_at = ?
		WHERE id = ? AND assigned_to = ? AND is_completed = ?
		  AND EXISTS (
		      SELECT 1 FROM family_members fm
		      WHERE fm.family_id = tasks.family_id AND fm.user_id = ?
		  )
	`
	result, err := r.db.Exec(query, true, completedAt, taskID, userID, false, userID)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	return affected(result)
}

// UnassignedTask is the part of a task the balancer needs
type UnassignedTask struct {
	ID         int64
	Difficulty int
	CreatedAt  time.Time
}

// LockUnassignedTasks reads a family's open, unassigned tasks in creation
// order, taking row locks where the dialect supports them. q should be a
// transaction.
func (r *TaskRepository) LockUnassignedTasks(q database.DBTX, familyID int64) ([]UnassignedTask, error) {
	query := `
		SELECT id, difficulty, created_at FROM tasks
		WHERE family_id = ? AND assigned_to IS NULL AND is_completed = ?
		ORDER BY created_at ASC, id ASC` + q.GetDialect().LockClause()

	rows, err := q.Query(query, familyID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned tasks: %w", err)
	}
	defer rows.Close()

	var tasks []UnassignedTask
	for rows.Next() {
		var t UnassignedTask
		if err := rows.Scan(&t.ID, &t.Difficulty, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unassigned task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AssignIfUnassigned assigns a task only while it is still open and
// unassigned. It reports whether the task was claimed.
func (r *TaskRepository) AssignIfUnassigned(q database.DBTX, taskID, assigneeID int64) (bool, error) {
	query := "UPDATE tasks SET assigned_to = ? WHERE id = ? AND assigned_to IS NULL AND is_completed = ?"
	result, err := q.Exec(query, assigneeID, taskID, false)
	if err != nil {
		return false, fmt.Errorf("failed to assign task %d: %w", taskID, err)
	}
	return affected(result)
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
