package store

import (
	"context"
	"time"

	"pawport/internal/dog/models"
	id "pawport/pkg/domain"
	"pawport/pkg/email"
)

// SeedDemoHandler creates a demo handler with one dog for development
// runs against the in-memory stores.
func SeedDemoHandler(dogs *InMemoryDogStore, handlers *InMemoryHandlerStore) (*models.Handler, *models.Dog) {
	now := time.Now()
	demoEmail := "demo.handler@example.com"
	handler := &models.Handler{
		ID:               id.NewHandlerID(),
		Email:            demoEmail,
		Name:             email.DeriveDisplayName(demoEmail),
		SubscriptionTier: "free",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_ = handlers.Create(context.Background(), handler)

	dog := &models.Dog{
		ID:                id.NewDogID(),
		HandlerID:         handler.ID,
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		WeightLbs:         62,
		ServiceRole:       models.RoleGuide,
		VerificationLevel: models.LevelYellow,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	_ = dogs.Create(context.Background(), dog)
	return handler, dog
}
