// Package store provides dog and handler persistence.
//
// Interfaces are defined here and satisfied by in-memory and Postgres
// implementations; services depend on the interface so the engine's
// callers stay storage-agnostic.
package store

import (
	"context"

	"pawport/internal/dog/models"
	id "pawport/pkg/domain"
)

// DogStore persists dog profiles. Verification level updates go through
// UpdateVerificationLevel so the write surface for derived state stays
// narrow.
type DogStore interface {
	Create(ctx context.Context, dog *models.Dog) error
	FindByID(ctx context.Context, dogID id.DogID) (*models.Dog, error)
	ListByHandler(ctx context.Context, handlerID id.HandlerID) ([]*models.Dog, error)
	ListAll(ctx context.Context) ([]*models.Dog, error)
	UpdateVerificationLevel(ctx context.Context, dogID id.DogID, level models.VerificationLevel) error
}

// HandlerStore persists handler (owner) accounts.
type HandlerStore interface {
	Create(ctx context.Context, handler *models.Handler) error
	FindByID(ctx context.Context, handlerID id.HandlerID) (*models.Handler, error)
}
