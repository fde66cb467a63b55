package store

import (
	"context"
	"sort"
	"sync"

	"pawport/internal/record/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// InMemoryRecordStore is the development and test implementation.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.NormalizedRecord
}

func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[id.RecordID]*models.NormalizedRecord)}
}

func (s *InMemoryRecordStore) Create(_ context.Context, record *models.NormalizedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *record
	s.records[record.ID] = &cp
	return nil
}

func (s *InMemoryRecordStore) FindByID(_ context.Context, recordID id.RecordID) (*models.NormalizedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// ListByDog returns the dog's records ordered by record date so
// downstream iteration (first-match task extraction) is deterministic.
func (s *InMemoryRecordStore) ListByDog(_ context.Context, dogID id.DogID) ([]*models.NormalizedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.NormalizedRecord
	for _, record := range s.records {
		if record.DogID == dogID {
			cp := *record
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordDate.Before(out[j].RecordDate)
	})
	return out, nil
}

// InMemoryDocumentStore is the development and test implementation.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]*models.RawDocument
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[id.DocumentID]*models.RawDocument)}
}

func (s *InMemoryDocumentStore) Create(_ context.Context, doc *models.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *doc
	s.docs[doc.ID] = &cp
	return nil
}

func (s *InMemoryDocumentStore) Update(_ context.Context, doc *models.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *doc
	s.docs[doc.ID] = &cp
	return nil
}

func (s *InMemoryDocumentStore) FindByID(_ context.Context, docID id.DocumentID) (*models.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemoryDocumentStore) ListByDog(_ context.Context, dogID id.DogID) ([]*models.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RawDocument
	for _, doc := range s.docs {
		if doc.DogID == dogID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryDocumentStore) ListAll(_ context.Context) ([]*models.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.RawDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return out, nil
}
