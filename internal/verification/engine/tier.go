package engine

import (
	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
	"pawport/internal/verification/models"
)

// Conditions are the six facts the tier machine evaluates. Modeling
// them explicitly keeps the state machine auditable transition by
// transition instead of burying first-match-wins logic in nested ifs.
type Conditions struct {
	HasActiveVaccination bool
	HasActiveTraining    bool
	VetVerified          bool
	TrainerVerified      bool
	ScoresMeetBlueBar    bool
	RequiresReview       bool
}

// tierRule is one row of the ordered decision table.
type tierRule struct {
	name    string
	matches func(Conditions) bool
	level   dogmodels.VerificationLevel
}

// tierRules is evaluated top-down, first match wins. The final rule
// always matches: a dog qualifying for BLUE on scores but flagged for
// review stays GREEN. Review can cap a tier at GREEN; it never forces
// a dog below GREEN.
var tierRules = []tierRule{
	{
		name: "incomplete records",
		matches: func(c Conditions) bool {
			return !c.HasActiveVaccination || !c.HasActiveTraining
		},
		level: dogmodels.LevelYellow,
	},
	{
		name: "records complete but unverified",
		matches: func(c Conditions) bool {
			return !c.VetVerified || !c.TrainerVerified
		},
		level: dogmodels.LevelGreen,
	},
	{
		name: "verified with high scores",
		matches: func(c Conditions) bool {
			return c.ScoresMeetBlueBar && !c.RequiresReview
		},
		level: dogmodels.LevelBlue,
	},
	{
		name:    "verified but held for review or low scores",
		matches: func(Conditions) bool { return true },
		level:   dogmodels.LevelGreen,
	},
}

// DetermineVerificationLevel derives the public tier from scratch on
// every call; there is no hysteresis and no dependence on the dog's
// current level.
func (e *Engine) DetermineVerificationLevel(
	dog *dogmodels.Dog,
	records []*recmodels.NormalizedRecord,
	bundle models.InternalScoreBundle,
) dogmodels.VerificationLevel {
	return evaluateTier(ConditionsFrom(records, bundle))
}

// ConditionsFrom snapshots the tier inputs from records and the score
// bundle.
func ConditionsFrom(records []*recmodels.NormalizedRecord, bundle models.InternalScoreBundle) Conditions {
	c := Conditions{
		ScoresMeetBlueBar: bundle.ServiceEligibilityScore >= blueScoreThreshold &&
			bundle.TrainingEvidenceScore >= blueScoreThreshold &&
			bundle.HealthCompletenessScore >= blueScoreThreshold,
		RequiresReview: bundle.RequiresHumanReview,
	}
	for _, r := range records {
		if r.IsActive && r.WalletCategory == recmodels.CategoryVaccinations {
			c.HasActiveVaccination = true
		}
		if r.IsActive && r.WalletCategory == recmodels.CategoryTrainingVerification {
			c.HasActiveTraining = true
		}
		if r.VetVerified {
			c.VetVerified = true
		}
		if r.TrainerVerified {
			c.TrainerVerified = true
		}
	}
	return c
}

func evaluateTier(c Conditions) dogmodels.VerificationLevel {
	for _, rule := range tierRules {
		if rule.matches(c) {
			return rule.level
		}
	}
	// Unreachable: the last rule always matches.
	return dogmodels.LevelYellow
}
