package events

import (
	"context"
	"time"
)

type Type string

const (
	TaskCreated  Type = "task.created"
	TaskUpdated  Type = "task.updated"
	TaskDeleted  Type = "task.deleted"
	TaskAssigned Type = "task.assigned"
)

type TaskEvent struct {
	Type       Type
	TaskID     string
	ActorID    string
	AssignedTo string
	At         time.Time
}

type Publisher interface {
	Publish(ctx context.Context, event *TaskEvent) error
}

// NopPublisher drops every event. Used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *TaskEvent) error { return nil }
