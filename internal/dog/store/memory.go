package store

import (
	"context"
	"sync"
	"time"

	"pawport/internal/dog/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// InMemoryDogStore is the development and test implementation.
type InMemoryDogStore struct {
	mu   sync.RWMutex
	dogs map[id.DogID]*models.Dog
}

func NewInMemoryDogStore() *InMemoryDogStore {
	return &InMemoryDogStore{dogs: make(map[id.DogID]*models.Dog)}
}

func (s *InMemoryDogStore) Create(_ context.Context, dog *models.Dog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dogs[dog.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *dog
	s.dogs[dog.ID] = &cp
	return nil
}

func (s *InMemoryDogStore) FindByID(_ context.Context, dogID id.DogID) (*models.Dog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dog, ok := s.dogs[dogID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *dog
	return &cp, nil
}

func (s *InMemoryDogStore) ListByHandler(_ context.Context, handlerID id.HandlerID) ([]*models.Dog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Dog
	for _, dog := range s.dogs {
		if dog.HandlerID == handlerID {
			cp := *dog
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryDogStore) ListAll(_ context.Context) ([]*models.Dog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Dog, 0, len(s.dogs))
	for _, dog := range s.dogs {
		cp := *dog
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryDogStore) UpdateVerificationLevel(_ context.Context, dogID id.DogID, level models.VerificationLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dog, ok := s.dogs[dogID]
	if !ok {
		return sentinel.ErrNotFound
	}
	dog.VerificationLevel = level
	dog.UpdatedAt = time.Now()
	return nil
}

// InMemoryHandlerStore is the development and test implementation.
type InMemoryHandlerStore struct {
	mu       sync.RWMutex
	handlers map[id.HandlerID]*models.Handler
}

func NewInMemoryHandlerStore() *InMemoryHandlerStore {
	return &InMemoryHandlerStore{handlers: make(map[id.HandlerID]*models.Handler)}
}

func (s *InMemoryHandlerStore) Create(_ context.Context, handler *models.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handlers[handler.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *handler
	s.handlers[handler.ID] = &cp
	return nil
}

func (s *InMemoryHandlerStore) FindByID(_ context.Context, handlerID id.HandlerID) (*models.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handler, ok := s.handlers[handlerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *handler
	return &cp, nil
}
