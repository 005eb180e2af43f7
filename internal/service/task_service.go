package service

import (
	"context"
	"errors"
	"time"

	"github.com/Varun5711/taskapi/internal/events"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/models"
	"github.com/Varun5711/taskapi/internal/storage"
	"github.com/Varun5711/taskapi/internal/validation"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TaskService applies the ownership rules on top of task storage.
// A task is visible to its creator and its current assignee; only the
// creator may update, delete or assign it.
type TaskService struct {
	store     storage.TaskStore
	publisher events.Publisher
	now       func() time.Time
	log       *logger.Logger
}

func NewTaskService(store storage.TaskStore, publisher events.Publisher, log *logger.Logger) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

// WithClock replaces the time source, for tests.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) Create(ctx context.Context, principal string, req *models.CreateTaskRequest) (*models.Task, error) {
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, invalidInput(err)
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, invalidInput(validation.ErrInvalidPriority)
	}

	now := s.now().UTC()
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      models.StatusPending,
		CreatedBy:   principal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.DueDate != nil {
		d := req.DueDate.UTC()
		task.DueDate = &d
	}

	if err := s.store.Save(task); err != nil {
		return nil, internalf("failed to save task: %v", err)
	}

	s.publish(ctx, events.TaskCreated, task, principal)
	return task, nil
}

// List returns the principal's scoped set narrowed by filter, in storage order.
// Filter values are compared as given, so an unknown value matches nothing.
func (s *TaskService) List(ctx context.Context, principal string, filter models.TaskFilter) ([]*models.Task, error) {
	return s.store.List(func(task *models.Task) bool {
		return task.VisibleTo(principal) && filter.Matches(task)
	}), nil
}

// Scoped returns every task visible to principal.
func (s *TaskService) Scoped(principal string) []*models.Task {
	return s.store.List(func(task *models.Task) bool {
		return task.VisibleTo(principal)
	})
}

func (s *TaskService) Get(ctx context.Context, principal, id string) (*models.Task, error) {
	task, err := s.store.Get(id)
	if err != nil {
		return nil, s.lookupError(err)
	}

	if !task.VisibleTo(principal) {
		return nil, status.Error(codes.PermissionDenied, MsgAccessDenied)
	}

	return task, nil
}

// Update validates the whole patch before touching the record, so a rejected
// patch leaves the task unchanged.
func (s *TaskService) Update(ctx context.Context, principal, id string, patch *models.TaskPatch) (*models.Task, error) {
	if err := validatePatch(patch); err != nil {
		return nil, invalidInput(err)
	}

	task, err := s.store.Update(id, func(task *models.Task) error {
		if !task.IsCreator(principal) {
			return status.Error(codes.PermissionDenied, MsgCreatorOnlyUpdate)
		}
		patch.Apply(task)
		task.UpdatedAt = s.touch(task.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, s.lookupError(err)
	}

	s.publish(ctx, events.TaskUpdated, task, principal)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, principal, id string) error {
	var deleted *models.Task
	err := s.store.Delete(id, func(task *models.Task) error {
		if !task.IsCreator(principal) {
			return status.Error(codes.PermissionDenied, MsgCreatorOnlyDelete)
		}
		deleted = task
		return nil
	})
	if err != nil {
		return s.lookupError(err)
	}

	s.publish(ctx, events.TaskDeleted, deleted, principal)
	return nil
}

// Assign does not check that assignee is a registered user.
func (s *TaskService) Assign(ctx context.Context, principal, id, assignee string) (*models.Task, error) {
	if err := validation.ValidateAssignee(assignee); err != nil {
		return nil, invalidInput(err)
	}

	task, err := s.store.Update(id, func(task *models.Task) error {
		if !task.IsCreator(principal) {
			return status.Error(codes.PermissionDenied, MsgCreatorOnlyAssign)
		}
		a := assignee
		task.AssignedTo = &a
		task.UpdatedAt = s.touch(task.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, s.lookupError(err)
	}

	s.publish(ctx, events.TaskAssigned, task, principal)
	return task, nil
}

func validatePatch(patch *models.TaskPatch) error {
	if patch.Title != nil {
		if err := validation.ValidateTitle(*patch.Title); err != nil {
			return validation.ErrTitleEmpty
		}
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return validation.ErrInvalidPriority
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return validation.ErrInvalidStatus
	}
	if patch.AssignedTo != nil {
		if err := validation.ValidateAssignee(*patch.AssignedTo); err != nil {
			return err
		}
	}
	return nil
}

// touch returns a timestamp strictly after prev.
func (s *TaskService) touch(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *TaskService) lookupError(err error) error {
	if errors.Is(err, storage.ErrTaskNotFound) {
		return status.Error(codes.NotFound, MsgTaskNotFound)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return internalf("task storage failure: %v", err)
}

func (s *TaskService) publish(ctx context.Context, typ events.Type, task *models.Task, actor string) {
	event := &events.TaskEvent{
		Type:    typ,
		TaskID:  task.ID,
		ActorID: actor,
		At:      task.UpdatedAt,
	}
	if task.AssignedTo != nil {
		event.AssignedTo = *task.AssignedTo
	}
	if typ == events.TaskDeleted {
		event.At = s.now().UTC()
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish %s for task %s: %v", typ, task.ID, err)
	}
}
