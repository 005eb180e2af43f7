package storage

import (
	"errors"

	"github.com/Varun5711/taskapi/internal/models"
	usermodel "github.com/Varun5711/taskapi/internal/models/user"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskExists   = errors.New("task already exists")
)

// UserStore owns user records. Email uniqueness is enforced on insert.
type UserStore interface {
	CreateUser(req *usermodel.CreateUserRequest, passwordHash string) (*usermodel.User, error)
	GetUserByEmail(email string) (*usermodel.User, error)
	GetUserByID(userID string) (*usermodel.User, error)
	Reset()
}

// TaskStore owns task records in insertion order. Returned tasks are copies.
type TaskStore interface {
	Save(task *models.Task) error
	Get(id string) (*models.Task, error)
	// Update runs mutate on a copy of the task under the write lock and stores
	// the copy only when mutate returns nil.
	Update(id string, mutate func(task *models.Task) error) (*models.Task, error)
	// Delete removes the task when check returns nil.
	Delete(id string, check func(task *models.Task) error) error
	// List returns, in insertion order, the tasks for which keep returns true.
	List(keep func(task *models.Task) bool) []*models.Task
	Reset()
}
