// Package store provides raw document and normalized record persistence.
package store

import (
	"context"

	"pawport/internal/record/models"
	id "pawport/pkg/domain"
)

// RecordStore persists normalized records. Records are append-only from
// the engine's point of view; only the normalizer writes here.
type RecordStore interface {
	Create(ctx context.Context, record *models.NormalizedRecord) error
	FindByID(ctx context.Context, recordID id.RecordID) (*models.NormalizedRecord, error)
	ListByDog(ctx context.Context, dogID id.DogID) ([]*models.NormalizedRecord, error)
}

// DocumentStore persists raw uploaded documents. ListAll exists for the
// fraud checker's cross-dog hash comparison.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.RawDocument) error
	Update(ctx context.Context, doc *models.RawDocument) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.RawDocument, error)
	ListByDog(ctx context.Context, dogID id.DogID) ([]*models.RawDocument, error)
	ListAll(ctx context.Context) ([]*models.RawDocument, error)
}
