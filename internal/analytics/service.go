package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Varun5711/taskapi/internal/models"
)

const recentActivityLimit = 5

// TaskSource is the read side of the task store, already scoped to a principal.
type TaskSource interface {
	Scoped(principal string) []*models.Task
}

type Service struct {
	tasks TaskSource
	now   func() time.Time
}

func NewService(tasks TaskSource) *Service {
	return &Service{tasks: tasks, now: time.Now}
}

// WithClock replaces the time source used for overdue checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type Statistics struct {
	Total      int            `json:"total"`
	ByStatus   StatusCounts   `json:"byStatus"`
	ByPriority PriorityCounts `json:"byPriority"`
	Created    int            `json:"created"`
	Assigned   int            `json:"assigned"`
}

type Trends struct {
	CompletionRate  string         `json:"completionRate"`
	OverdueTasks    int            `json:"overdueTasks"`
	AveragePriority string         `json:"averagePriority"`
	RecentActivity  []*models.Task `json:"recentActivity"`
}

func (s *Service) Statistics(ctx context.Context, principal string) (*Statistics, error) {
	tasks := s.tasks.Scoped(principal)

	stats := &Statistics{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusPending:
			stats.ByStatus.Pending++
		case models.StatusInProgress:
			stats.ByStatus.InProgress++
		case models.StatusCompleted:
			stats.ByStatus.Completed++
		}

		switch task.Priority {
		case models.PriorityLow:
			stats.ByPriority.Low++
		case models.PriorityMedium:
			stats.ByPriority.Medium++
		case models.PriorityHigh:
			stats.ByPriority.High++
		}

		if task.IsCreator(principal) {
			stats.Created++
		}
		if task.IsAssignee(principal) {
			stats.Assigned++
		}
	}

	return stats, nil
}

func (s *Service) Trends(ctx context.Context, principal string) (*Trends, error) {
	tasks := s.tasks.Scoped(principal)
	now := s.now()

	completed := 0
	overdue := 0
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			completed++
			continue
		}
		if task.DueDate != nil && task.DueDate.Before(now) {
			overdue++
		}
	}

	return &Trends{
		CompletionRate:  CompletionRate(completed, len(tasks)),
		OverdueTasks:    overdue,
		AveragePriority: AveragePriority(tasks),
		RecentActivity:  recentActivity(tasks),
	}, nil
}

// CompletionRate formats completed/total as a percentage with two decimals.
func CompletionRate(completed, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(completed)/float64(total)*100)
}

func priorityWeight(p models.Priority) int {
	switch p {
	case models.PriorityLow:
		return 1
	case models.PriorityHigh:
		return 3
	default:
		return 2
	}
}

// AveragePriority buckets the mean priority weight into Low, Medium or High.
func AveragePriority(tasks []*models.Task) string {
	if len(tasks) == 0 {
		return "N/A"
	}

	sum := 0
	for _, task := range tasks {
		sum += priorityWeight(task.Priority)
	}
	avg := float64(sum) / float64(len(tasks))

	switch {
	case avg <= 1.5:
		return "Low"
	case avg <= 2.5:
		return "Medium"
	default:
		return "High"
	}
}

// recentActivity returns the last tasks in enumeration order, newest first.
func recentActivity(tasks []*models.Task) []*models.Task {
	start := len(tasks) - recentActivityLimit
	if start < 0 {
		start = 0
	}

	recent := make([]*models.Task, 0, len(tasks)-start)
	for i := len(tasks) - 1; i >= start; i-- {
		recent = append(recent, tasks[i])
	}
	return recent
}
