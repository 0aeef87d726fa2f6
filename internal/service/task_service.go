package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"choreshare/internal/config"
	"choreshare/internal/database"
	"choreshare/internal/lock"
	"choreshare/internal/models"
	"choreshare/internal/repository"
	"choreshare/internal/validation"
	"choreshare/internal/workload"
)

// NothingToDo is the message reported by a balancing pass with no unassigned tasks
const NothingToDo = "nothing to do"

// CreateTaskInput holds the caller-supplied fields of a new task. Nil pointers
// take the configured defaults; a nil AssignedTo leaves the task unassigned.
type CreateTaskInput struct {
	Title         string
	Description   string
	Difficulty    *int
	EstimatedDays *int
	AssignedTo    *int64
}

// BalanceResult reports the outcome of a balancing pass
type BalanceResult struct {
	AssignedCount int    `json:"assigned_count"`
	NothingToDo   bool   `json:"nothing_to_do,omitempty"`
	Message       string `json:"message"`
	// Loads is the difficulty each member received in this pass
	Loads map[int64]int `json:"loads,omitempty"`
}

// TaskService implements the task lifecycle and workload balancing
type TaskService struct {
	taskRepo     *repository.TaskRepository
	familyRepo   *repository.FamilyRepository
	userRepo     *repository.UserRepository
	templateRepo *repository.TemplateRepository
	guard        *MembershipGuard
	locker       lock.Locker
	defaults     config.TaskDefaults
	strict       bool
	logger       *slog.Logger
	now          func() time.Time
}

// TaskServiceOptions configures a TaskService
type TaskServiceOptions struct {
	Defaults config.TaskDefaults
	// StrictAssignment requires assignees to be members of the task's family
	StrictAssignment bool
	Logger           *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo *repository.TaskRepository,
	familyRepo *repository.FamilyRepository,
	userRepo *repository.UserRepository,
	templateRepo *repository.TemplateRepository,
	guard *MembershipGuard,
	locker lock.Locker,
	opts TaskServiceOptions,
) *TaskService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo:     taskRepo,
		familyRepo:   familyRepo,
		userRepo:     userRepo,
		templateRepo: templateRepo,
		guard:        guard,
		locker:       locker,
		defaults:     opts.Defaults,
		strict:       opts.StrictAssignment,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateTask creates a task in familyID on behalf of callerID
func (s *TaskService) CreateTask(callerID, familyID int64, in CreateTaskInput) (*models.Task, error) {
	if err := s.guard.RequireMember(callerID, familyID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateTaskTitle(title); err != nil {
		return nil, err
	}

	difficulty := s.defaults.Difficulty
	if in.Difficulty != nil {
		difficulty = *in.Difficulty
	}
	if err := validation.ValidateDifficulty(difficulty, s.defaults.MinDifficulty, s.defaults.MaxDifficulty); err != nil {
		return nil, err
	}

	days := s.defaults.EstimatedDays
	if in.EstimatedDays != nil {
		days = *in.EstimatedDays
	}
	if err := validation.ValidateEstimatedDays(days); err != nil {
		return nil, err
	}

	if in.AssignedTo != nil {
		if err := s.checkAssignee(*in.AssignedTo, familyID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	task := &models.Task{
		FamilyID:      familyID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Difficulty:    difficulty,
		EstimatedDays: days,
		AssignedTo:    in.AssignedTo,
		CreatedBy:     callerID,
		DueDate:       models.DueDateFor(now, days),
		CreatedAt:     now,
	}
	if err := s.taskRepo.CreateTask(task); err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "family_id", familyID, "created_by", callerID)
	return task, nil
}

// CreateTaskFromTemplate creates a task pre-filled from a catalog template
func (s *TaskService) CreateTaskFromTemplate(callerID, familyID, templateID int64, assignedTo *int64) (*models.Task, error) {
	tmpl, err := s.templateRepo.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}

	difficulty := tmpl.SuggestedDifficulty
	days := tmpl.EstimatedDays
	return s.CreateTask(callerID, familyID, CreateTaskInput{
		Title:         tmpl.Name,
		Difficulty:    &difficulty,
		EstimatedDays: &days,
		AssignedTo:    assignedTo,
	})
}

// ListTasks returns a family's tasks, open tasks first and newest first
func (s *TaskService) ListTasks(callerID, familyID int64) ([]models.Task, error) {
	if err := s.guard.RequireMember(callerID, familyID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListFamilyTasks(familyID)
}

// AssignTask sets the assignee of a task, replacing any previous assignee.
// A missing task and one outside the caller's families both yield ErrTaskNotFound.
func (s *TaskService) AssignTask(callerID, taskID, assigneeID int64) error {
	task, err := s.taskRepo.GetTaskForMember(taskID, callerID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}

	if err := s.checkAssignee(assigneeID, task.FamilyID); err != nil {
		return err
	}

	ok, err := s.taskRepo.AssignTask(taskID, assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}

	s.logger.Info("task assigned", "task_id", taskID, "assigned_to", assigneeID, "by", callerID)
	return nil
}

func (s *TaskService) checkAssignee(assigneeID, familyID int64) error {
	if s.strict {
		ok, err := s.familyRepo.IsFamilyMember(assigneeID, familyID)
		if err != nil {
			return fmt.Errorf("failed to check assignee membership: %w", err)
		}
		if !ok {
			return validation.ValidationError{Field: "assigned_to", Message: "assignee is not a member of this family"}
		}
		return nil
	}

	exists, err := s.userRepo.UserExists(assigneeID)
	if err != nil {
		return err
	}
	if !exists {
		return validation.ValidationError{Field: "assigned_to", Message: "assignee does not exist"}
	}
	return nil
}

// CompleteTask marks a task done. Only the current assignee, while a member
// of the task's family, may complete an open task; anything else yields
// ErrTaskNotFound.
func (s *TaskService) CompleteTask(callerID, taskID int64) error {
	ok, err := s.taskRepo.CompleteTask(taskID, callerID, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}

	s.logger.Info("task completed", "task_id", taskID, "by", callerID)
	return nil
}

// BalanceUnassigned distributes a family's unassigned tasks across its
// members. Passes over the same family are serialized and all assignments of
// a pass commit together.
func (s *TaskService) BalanceUnassigned(ctx context.Context, callerID, familyID int64) (*BalanceResult, error) {
	if err := s.guard.RequireMember(callerID, familyID); err != nil {
		return nil, err
	}

	result, err := s.balance(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if !result.NothingToDo {
		s.logger.Info("family tasks balanced", "family_id", familyID, "assigned", result.AssignedCount, "by", callerID)
	}
	return result, nil
}

func (s *TaskService) balance(ctx context.Context, familyID int64) (*BalanceResult, error) {
	release, err := s.locker.Lock(ctx, familyLockKey(familyID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock family %d: %w", familyID, err)
	}
	defer release()

	var result *BalanceResult
	err = s.taskRepo.WithTx(ctx, func(q database.DBTX) error {
		tasks, err := s.taskRepo.LockUnassignedTasks(q, familyID)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			result = &BalanceResult{NothingToDo: true, Message: NothingToDo}
			return nil
		}

		members, err := s.familyRepo.MemberIDs(q, familyID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return fmt.Errorf("%w: family %d has no members", ErrPreconditionFailed, familyID)
		}

		items := make([]workload.Item, len(tasks))
		for i, t := range tasks {
			items[i] = workload.Item{TaskID: t.ID, Difficulty: t.Difficulty, CreatedAt: t.CreatedAt}
		}
		plan := workload.Balance(items, members)

		for _, a := range plan.Assignments {
			ok, err := s.taskRepo.AssignIfUnassigned(q, a.TaskID, a.MemberID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: task %d", ErrConcurrentUpdate, a.TaskID)
			}
		}

		result = &BalanceResult{
			AssignedCount: len(plan.Assignments),
			Message:       fmt.Sprintf("assigned %d tasks", len(plan.Assignments)),
			Loads:         plan.Loads,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListTemplates returns the task template catalog
func (s *TaskService) ListTemplates() ([]models.TaskTemplate, error) {
	return s.templateRepo.ListTemplates()
}

func familyLockKey(familyID int64) string {
	return fmt.Sprintf("family:%d:balance", familyID)
}
