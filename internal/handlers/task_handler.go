package handlers

import (
	"net/http"

	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
	"github.com/Varun5711/taskapi/internal/models"
	"github.com/Varun5711/taskapi/internal/service"
	"github.com/Varun5711/taskapi/internal/validation"
)

type TaskHandler struct {
	tasks *service.TaskService
	log   *logger.Logger
}

func NewTaskHandler(tasks *service.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		log:   log,
	}
}

// CreateTaskRequest fields are pointers so that "missing" and "empty" can be
// told apart during validation.
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest carries any subset of the mutable fields. Unknown fields
// are ignored; null is the same as absent.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
	AssignedTo  *string `json:"assignedTo"`
}

type AssignTaskRequest struct {
	AssignedTo string `json:"assignedTo"`
}

func (req *CreateTaskRequest) toModel() (*models.CreateTaskRequest, error) {
	if req.Title == nil {
		return nil, validation.ErrTitleRequired
	}
	if err := validation.ValidateTitle(*req.Title); err != nil {
		return nil, err
	}

	out := &models.CreateTaskRequest{Title: *req.Title}
	if req.Description != nil {
		out.Description = *req.Description
	}
	if req.Priority != nil {
		p, err := validation.ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		out.Priority = p
	}
	if req.DueDate != nil {
		due, err := validation.ParseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		out.DueDate = &due
	}
	return out, nil
}

func (req *UpdateTaskRequest) toPatch() (*models.TaskPatch, error) {
	patch := &models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Title != nil && validation.ValidateTitle(*req.Title) != nil {
		return nil, validation.ErrTitleEmpty
	}
	if req.Status != nil {
		st, err := validation.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &st
	}
	if req.Priority != nil {
		p, err := validation.ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		patch.Priority = &p
	}
	if req.DueDate != nil {
		due, err := validation.ParseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}
	return patch, nil
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	in, err := req.toModel()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TaskFilter{
		Status:   models.Status(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
	}

	tasks, err := h.tasks.List(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondList(w, tasks, len(tasks))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "", task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.Update(r.Context(), middleware.GetUserID(r.Context()), id, patch)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	task, err := h.tasks.Assign(r.Context(), middleware.GetUserID(r.Context()), id, req.AssignedTo)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "Task assigned successfully", task)
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := validation.ValidateTaskID(id); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
