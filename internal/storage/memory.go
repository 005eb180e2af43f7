package storage

import (
	"fmt"
	"sync"

	"github.com/Varun5711/taskapi/internal/models"
)

type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	order []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[string]*models.Task),
	}
}

func (s *MemoryStorage) Save(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("save task %s: %w", task.ID, ErrTaskExists)
	}

	s.tasks[task.ID] = task.Clone()
	s.order = append(s.order, task.ID)
	return nil
}

func (s *MemoryStorage) Get(id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}

	return task.Clone(), nil
}

func (s *MemoryStorage) Update(id string, mutate func(task *models.Task) error) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	// identity, creator and creation time never change
	next.ID = current.ID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt

	s.tasks[id] = next
	return next.Clone(), nil
}

func (s *MemoryStorage) Delete(id string, check func(task *models.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return ErrTaskNotFound
	}

	if check != nil {
		if err := check(task.Clone()); err != nil {
			return err
		}
	}

	delete(s.tasks, id)
	for i, taskID := range s.order {
		if taskID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *MemoryStorage) List(keep func(task *models.Task) bool) []*models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(s.order))
	for _, id := range s.order {
		task := s.tasks[id]
		if keep == nil || keep(task) {
			tasks = append(tasks, task.Clone())
		}
	}

	return tasks
}

func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *MemoryStorage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*models.Task)
	s.order = nil
}
