package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type StreamPublisher struct {
	client     *redis.Client
	streamName string
	maxLen     int64
}

// NewStreamPublisher appends task events to a Redis stream capped at roughly maxLen entries.
func NewStreamPublisher(client *redis.Client, streamName string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		client:     client,
		streamName: streamName,
		maxLen:     maxLen,
	}
}

func (p *StreamPublisher) Publish(ctx context.Context, event *TaskEvent) error {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}

	fields := map[string]interface{}{
		"type":     string(event.Type),
		"task_id":  event.TaskID,
		"actor_id": event.ActorID,
		"at":       at.UTC().Format(time.RFC3339Nano),
	}

	if event.AssignedTo != "" {
		fields["assigned_to"] = event.AssignedTo
	}

	args := &redis.XAddArgs{
		Stream: p.streamName,
		Values: fields,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	return nil
}
