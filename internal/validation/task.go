package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/Varun5711/taskapi/internal/models"
	"github.com/google/uuid"
)

var (
	ErrTitleRequired    = errors.New("Title is required")
	ErrTitleEmpty       = errors.New("Title cannot be empty")
	ErrInvalidPriority  = errors.New("Priority must be low, medium, or high")
	ErrInvalidStatus    = errors.New("Invalid status")
	ErrInvalidDueDate   = errors.New("Valid date is required")
	ErrInvalidTaskID    = errors.New("Valid task ID is required")
	ErrAssigneeRequired = errors.New("User ID is required")
)

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func ParsePriority(s string) (models.Priority, error) {
	p := models.Priority(s)
	if !p.IsValid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

func ParseStatus(s string) (models.Status, error) {
	st := models.Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ParseDueDate accepts ISO-8601 timestamps with an offset, local-less timestamps (read as UTC)
// and plain calendar dates.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDueDate
}

// ValidateTaskID accepts only the canonical 36-character hyphenated UUID form.
func ValidateTaskID(id string) error {
	if len(id) != 36 {
		return ErrInvalidTaskID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidTaskID
	}
	return nil
}

func ValidateAssignee(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrAssigneeRequired
	}
	return nil
}
