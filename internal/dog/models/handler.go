package models

import (
	"time"

	id "pawport/pkg/domain"
)

// Handler is a dog owner account. Only the name is ever surfaced to
// businesses; contact details stay internal.
type Handler struct {
	ID    id.HandlerID `json:"id"`
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Phone string       `json:"phone,omitempty"`

	SubscriptionTier string `json:"subscription_tier"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
