package storage

import (
	"fmt"
	"sync"
	"time"

	usermodel "github.com/Varun5711/taskapi/internal/models/user"
	"github.com/google/uuid"
)

type UserStorage struct {
	mu      sync.RWMutex
	users   map[string]*usermodel.User
	byEmail map[string]string
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:   make(map[string]*usermodel.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStorage) CreateUser(req *usermodel.CreateUserRequest, passwordHash string) (*usermodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[req.Email]; exists {
		return nil, fmt.Errorf("create user %s: %w", req.Email, ErrEmailTaken)
	}

	user := &usermodel.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID

	c := *user
	return &c, nil
}

// GetUserByEmail matches the email exactly, including case.
func (s *UserStorage) GetUserByEmail(email string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}

	c := *s.users[id]
	return &c, nil
}

func (s *UserStorage) GetUserByID(userID string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}

	c := *user
	return &c, nil
}

func (s *UserStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStorage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*usermodel.User)
	s.byEmail = make(map[string]string)
}
