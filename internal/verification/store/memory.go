package store

import (
	"context"
	"sort"
	"sync"

	"pawport/internal/verification/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// InMemoryScoreStore is the development and test implementation.
type InMemoryScoreStore struct {
	mu      sync.RWMutex
	bundles map[id.DogID]*models.InternalScoreBundle
}

func NewInMemoryScoreStore() *InMemoryScoreStore {
	return &InMemoryScoreStore{bundles: make(map[id.DogID]*models.InternalScoreBundle)}
}

// Save replaces the dog's bundle wholesale.
func (s *InMemoryScoreStore) Save(_ context.Context, bundle *models.InternalScoreBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneBundle(bundle)
	s.bundles[bundle.DogID] = cp
	return nil
}

func (s *InMemoryScoreStore) FindByDog(_ context.Context, dogID id.DogID) (*models.InternalScoreBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bundle, ok := s.bundles[dogID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneBundle(bundle), nil
}

// ListRequiringReview returns flagged bundles ordered newest first for
// the admin review queue.
func (s *InMemoryScoreStore) ListRequiringReview(_ context.Context) ([]*models.InternalScoreBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InternalScoreBundle
	for _, bundle := range s.bundles {
		if bundle.RequiresHumanReview {
			out = append(out, cloneBundle(bundle))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ComputedAt.After(out[j].ComputedAt)
	})
	return out, nil
}

func cloneBundle(b *models.InternalScoreBundle) *models.InternalScoreBundle {
	cp := *b
	cp.FraudFlags = append([]string(nil), b.FraudFlags...)
	cp.MismatchFlags = append([]string(nil), b.MismatchFlags...)
	return &cp
}
