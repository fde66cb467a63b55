// Package audit defines the immutable event trail.
//
// Events are emitted by the engine's callers, never by the engine
// itself: the engine stays a pure function. Sinks fan out from a
// transport-agnostic Event so the same emission feeds the in-memory
// store in development and Kafka in production.
package audit

import (
	"context"
	"errors"
	"time"

	id "pawport/pkg/domain"
)

// ErrInboxFull is returned when a non-blocking publisher drops an event
// because its buffer is saturated.
var ErrInboxFull = errors.New("audit inbox full")

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// verification level changes, admin overrides, business scans.
	// These require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to fraud monitoring:
	// fraud flags raised, document reuse detected.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging:
	// uploads, recomputations, record normalization.
	CategoryOperations EventCategory = "operations"
)

// EventType enumerates every auditable action.
type EventType string

const (
	// Document pipeline events
	EventDocumentUploaded   EventType = "document_uploaded"
	EventDocumentProcessed  EventType = "document_processed"
	EventDocumentHeldForReview EventType = "document_held_for_review"
	EventRecordNormalized   EventType = "record_normalized"

	// Verification events
	EventScoresComputed           EventType = "scores_computed"
	EventVerificationLevelChanged EventType = "verification_level_changed"
	EventVerificationOverridden   EventType = "verification_overridden"

	// Fraud events
	EventFraudFlagsRaised EventType = "fraud_flags_raised"

	// Business events
	EventBusinessScan EventType = "business_scan"
)

var eventCategories = map[EventType]EventCategory{
	EventDocumentUploaded:         CategoryOperations,
	EventDocumentProcessed:        CategoryOperations,
	EventDocumentHeldForReview:    CategoryOperations,
	EventRecordNormalized:         CategoryOperations,
	EventScoresComputed:           CategoryOperations,
	EventVerificationLevelChanged: CategoryCompliance,
	EventVerificationOverridden:   CategoryCompliance,
	EventFraudFlagsRaised:         CategorySecurity,
	EventBusinessScan:             CategoryCompliance,
}

// Category returns the EventCategory for this event type.
// Unknown events default to CategoryOperations.
func (t EventType) Category() EventCategory {
	if cat, ok := eventCategories[t]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one immutable audit entry. Metadata holds small string
// facts (levels, filenames, scanner device); scores and internal flags
// never go through the audit trail's business-readable fields.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	ActorType string        `json:"actor_type"` // "system" | "handler" | "business" | "admin"
	ActorID   string        `json:"actor_id,omitempty"`
	DogID     id.DogID      `json:"dog_id,omitempty"`
	RecordID  id.RecordID   `json:"record_id,omitempty"`
	DocumentID id.DocumentID `json:"document_id,omitempty"`
	RequestID string        `json:"request_id,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Publisher,Store

// Publisher emits events to a sink. Emission failures are logged by
// callers, never surfaced to the acting user.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events for admin inspection.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDog(ctx context.Context, dogID id.DogID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
