// Package store persists internal score bundles.
package store

import (
	"context"

	"pawport/internal/verification/models"
	id "pawport/pkg/domain"
)

// ScoreStore holds the current internal score bundle per dog. Save
// supersedes any prior bundle for the dog; there is no merge operation.
type ScoreStore interface {
	Save(ctx context.Context, bundle *models.InternalScoreBundle) error
	FindByDog(ctx context.Context, dogID id.DogID) (*models.InternalScoreBundle, error)
	ListRequiringReview(ctx context.Context) ([]*models.InternalScoreBundle, error)
}
