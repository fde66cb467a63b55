package memory

import (
	"context"
	"sort"
	"sync"

	id "pawport/pkg/domain"
	"pawport/pkg/platform/audit"
)

// InMemoryStore keeps events per dog. Suitable for development and
// tests; production deployments append to Postgres or Kafka instead.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.DogID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.DogID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.DogID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DogID] = append(s.events[event.DogID], event)
	return nil
}

func (s *InMemoryStore) ListByDog(_ context.Context, dogID id.DogID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[dogID]...), nil
}

// ListRecent returns the most recent N events across all dogs.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, dogEvents := range s.events {
		all = append(all, dogEvents...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
