package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  *string    `json:"assignedTo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) IsCreator(userID string) bool {
	return t.CreatedBy == userID
}

func (t *Task) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// VisibleTo reports whether userID is the creator or the current assignee.
func (t *Task) VisibleTo(userID string) bool {
	return t.IsCreator(userID) || t.IsAssignee(userID)
}

// Clone returns a deep copy so callers never share pointers with storage.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		c.AssignedTo = &a
	}
	return &c
}

type CreateTaskRequest struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// TaskPatch holds the mutable task fields; nil means "leave unchanged".
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	DueDate     *time.Time
	AssignedTo  *string
}

func (p *TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.AssignedTo != nil {
		a := *p.AssignedTo
		t.AssignedTo = &a
	}
}

// TaskFilter narrows a listing by equality; zero values match everything.
type TaskFilter struct {
	Status   Status
	Priority Priority
}

func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}
