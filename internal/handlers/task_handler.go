package handlers

import (
	"net/http"

	"choreshare/internal/service"
	"choreshare/internal/validation"
)

// TaskHandler serves the task lifecycle and workload balancing endpoints
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks lists a family's tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	caller := GetCallerFromContext(r.Context())
	tasks, err := h.taskService.ListTasks(caller.User.ID, familyID)
	if err != nil {
		respondServiceError(w, err, "failed to list tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    *int   `json:"difficulty"`
	EstimatedDays *int   `json:"estimated_days"`
	AssignedTo    *int64 `json:"assigned_to"`
	// TemplateID pre-fills title, difficulty and duration from the catalog
	TemplateID *int64 `json:"template_id"`
}

// CreateTask creates a task in a family
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller := GetCallerFromContext(r.Context())
	var taskID int64
	if req.TemplateID != nil {
		task, err := h.taskService.CreateTaskFromTemplate(caller.User.ID, familyID, *req.TemplateID, req.AssignedTo)
		if err != nil {
			respondServiceError(w, err, "failed to create task from template")
			return
		}
		taskID = task.ID
	} else {
		task, err := h.taskService.CreateTask(caller.User.ID, familyID, service.CreateTaskInput{
			Title:         req.Title,
			Description:   req.Description,
			Difficulty:    req.Difficulty,
			EstimatedDays: req.EstimatedDays,
			AssignedTo:    req.AssignedTo,
		})
		if err != nil {
			respondServiceError(w, err, "failed to create task")
			return
		}
		taskID = task.ID
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"task_id": taskID,
	})
}

// AssignTask sets a task's assignee
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		AssignedTo *int64 `json:"assigned_to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssignedTo == nil {
		respondServiceError(w, validation.ValidationError{Field: "assigned_to", Message: "assigned_to is required"}, "")
		return
	}

	caller := GetCallerFromContext(r.Context())
	if err := h.taskService.AssignTask(caller.User.ID, taskID, *req.AssignedTo); err != nil {
		respondServiceError(w, err, "failed to assign task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CompleteTask marks the caller's task as done
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	caller := GetCallerFromContext(r.Context())
	if err := h.taskService.CompleteTask(caller.User.ID, taskID); err != nil {
		respondServiceError(w, err, "failed to complete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RandomAssign distributes the family's unassigned tasks across its members
func (h *TaskHandler) RandomAssign(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	caller := GetCallerFromContext(r.Context())
	result, err := h.taskService.BalanceUnassigned(r.Context(), caller.User.ID, familyID)
	if err != nil {
		respondServiceError(w, err, "failed to balance tasks")
		return
	}

	if result.NothingToDo {
		respondJSON(w, http.StatusOK, map[string]string{"message": result.Message})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"assigned_tasks": result.AssignedCount,
		"loads":          result.Loads,
	})
}

// Templates lists the task template catalog
func (h *TaskHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.taskService.ListTemplates()
	if err != nil {
		respondServiceError(w, err, "failed to list task templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}
