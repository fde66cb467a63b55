// Package models defines the internal score bundle.
//
// The bundle is admin-audience only. It is never serialized into any
// business-facing response; the public projection lives in
// internal/publicstatus and shares no types with this package.
package models

import (
	"time"

	id "pawport/pkg/domain"
)

// Review reasons for the non-mismatch cases. Mismatch flags join into
// the reason verbatim instead.
const (
	ReasonFraudFlags = "Fraud flags detected"
	ReasonLowScores  = "Low scores require review"
)

// InternalScoreBundle is one dog's score and flag state from a single
// computation. A recomputation supersedes the prior bundle wholesale;
// bundles are never merged.
type InternalScoreBundle struct {
	DogID id.DogID `json:"dog_id"`

	// All scores are in [0, 1].
	ServiceEligibilityScore    float64 `json:"service_eligibility_score"`
	TrainingEvidenceScore      float64 `json:"training_evidence_score"`
	HealthCompletenessScore    float64 `json:"health_completeness_score"`
	TaskBreedCompatibilityScore float64 `json:"task_breed_compatibility_score"`

	// FraudFlags come from the fraud checker verbatim. MismatchFlags
	// are generated by the engine. The two lists are never merged.
	FraudFlags    []string `json:"fraud_flags"`
	MismatchFlags []string `json:"mismatch_flags"`

	RequiresHumanReview bool   `json:"requires_human_review"`
	ReviewReason        string `json:"review_reason,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
	UpdatedBy  string    `json:"updated_by"`
}

// Flagged reports whether any fraud or mismatch flag is present.
func (b *InternalScoreBundle) Flagged() bool {
	return len(b.FraudFlags) > 0 || len(b.MismatchFlags) > 0
}
