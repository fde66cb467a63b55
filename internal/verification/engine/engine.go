// Package engine computes internal verification scores and the public
// verification tier.
//
// Everything here is a pure function over an in-memory snapshot: no
// I/O, no locks, no mutation of inputs. Callers persist the returned
// bundle and tier. Low scores and flags are normal results, never
// errors.
//
// The engine is the only component allowed to read both the breed
// reference and the record set. Its two outputs are routed to disjoint
// audiences: the InternalScoreBundle to admins, the VerificationLevel
// to the public tier on the dog. The ADA-safe public projection is
// derived independently in internal/publicstatus.
package engine

import (
	"strings"
	"time"

	"pawport/internal/breed"
	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
	"pawport/internal/verification/models"
)

// Score weights and thresholds. These are product-defined constants;
// changing one changes which dogs clear review and the BLUE bar.
const (
	eligibilityRabiesWeight      = 0.3
	eligibilityAttestationWeight = 0.3
	eligibilityAccessTestWeight  = 0.2
	eligibilityScreeningWeight   = 0.2

	trainingBaseScore      = 0.5
	trainingVerifiedWeight = 0.3
	trainingRecentWeight   = 0.2
	trainingRecentYears    = 2

	healthRabiesWeight     = 0.3
	healthDHPPWeight       = 0.2
	healthVetWeight        = 0.2
	healthScreeningsWeight = 0.3

	compatibilityIdeal        = 1.0
	compatibilitySuitable     = 0.8
	compatibilityOffProfile   = 0.6
	compatibilityUnknownBreed = 0.5

	reviewScoreThreshold = 0.7
	blueScoreThreshold   = 0.8

	mobilityMinWeightLbs = 50
)

// Input is one dog's snapshot for a single computation. FraudFlags come
// from the fraud checker and are merged into the bundle verbatim. Now
// anchors the year-granularity recency window so computations are
// reproducible.
type Input struct {
	Dog        *dogmodels.Dog
	Records    []*recmodels.NormalizedRecord
	FraudFlags []string
	Now        time.Time
}

// Engine evaluates dogs against the breed capability reference.
type Engine struct {
	breeds *breed.Reference
}

func New(breeds *breed.Reference) *Engine {
	return &Engine{breeds: breeds}
}

// ComputeInternalScores produces the full internal score bundle for a
// dog. The bundle supersedes any prior bundle; it is never merged.
func (e *Engine) ComputeInternalScores(in Input) models.InternalScoreBundle {
	eligibility := e.serviceEligibilityScore(in.Records)
	training := e.trainingEvidenceScore(in.Records, in.Now)
	health := e.healthCompletenessScore(in.Dog, in.Records)
	compatibility := e.compatibilityScore(in.Dog)

	mismatchFlags := e.mismatchFlags(in.Dog, in.Records)
	fraudFlags := append([]string(nil), in.FraudFlags...)

	requiresReview := len(fraudFlags) > 0 ||
		len(mismatchFlags) > 0 ||
		eligibility < reviewScoreThreshold ||
		training < reviewScoreThreshold

	// Exactly one reason category is chosen; reasons are never combined
	// across categories.
	var reason string
	if requiresReview {
		switch {
		case len(mismatchFlags) > 0:
			reason = strings.Join(mismatchFlags, "; ")
		case len(fraudFlags) > 0:
			reason = models.ReasonFraudFlags
		default:
			reason = models.ReasonLowScores
		}
	}

	return models.InternalScoreBundle{
		DogID:                       in.Dog.ID,
		ServiceEligibilityScore:     eligibility,
		TrainingEvidenceScore:       training,
		HealthCompletenessScore:     health,
		TaskBreedCompatibilityScore: compatibility,
		FraudFlags:                  fraudFlags,
		MismatchFlags:               mismatchFlags,
		RequiresHumanReview:         requiresReview,
		ReviewReason:                reason,
		ComputedAt:                  in.Now,
		UpdatedBy:                   "system",
	}
}

// serviceEligibilityScore sums step contributions for the presence of
// required documentation. Contributions are on presence, not quantity.
func (e *Engine) serviceEligibilityScore(records []*recmodels.NormalizedRecord) float64 {
	score := 0.0
	if hasActiveType(records, recmodels.DocTypeRabiesCertificate) {
		score += eligibilityRabiesWeight
	}
	if hasActiveType(records, recmodels.DocTypeServiceTaskAttestation) {
		score += eligibilityAttestationWeight
	}
	if hasActiveType(records, recmodels.DocTypePublicAccessTest) {
		score += eligibilityAccessTestWeight
	}
	if hasActiveScreening(records) {
		score += eligibilityScreeningWeight
	}
	return capScore(score)
}

// trainingEvidenceScore scores training documentation quality. The
// recency window is year-granular on purpose: a record from two
// calendar years ago counts regardless of month.
func (e *Engine) trainingEvidenceScore(records []*recmodels.NormalizedRecord, now time.Time) float64 {
	var training []*recmodels.NormalizedRecord
	for _, r := range records {
		if r.WalletCategory == recmodels.CategoryTrainingVerification {
			training = append(training, r)
		}
	}
	if len(training) == 0 {
		return 0
	}

	score := trainingBaseScore
	for _, r := range training {
		if r.TrainerVerified {
			score += trainingVerifiedWeight
			break
		}
	}
	for _, r := range training {
		if r.RecordDate.Year() >= now.Year()-trainingRecentYears {
			score += trainingRecentWeight
			break
		}
	}
	return capScore(score)
}

// healthCompletenessScore scores vaccination and screening coverage.
// The breed component is proportional to the fraction of recommended
// screenings satisfied; unknown breeds contribute nothing.
func (e *Engine) healthCompletenessScore(dog *dogmodels.Dog, records []*recmodels.NormalizedRecord) float64 {
	score := 0.0
	if hasActiveType(records, recmodels.DocTypeRabiesCertificate) {
		score += healthRabiesWeight
	}
	if hasActiveType(records, recmodels.DocTypeDHPP) {
		score += healthDHPPWeight
	}
	for _, r := range records {
		if r.VetVerified {
			score += healthVetWeight
			break
		}
	}

	if profile, ok := e.breeds.Lookup(dog.Breed); ok && len(profile.RecommendedScreenings) > 0 {
		completed := 0
		for _, keyword := range profile.RecommendedScreenings {
			if hasActiveScreeningKeyword(records, keyword) {
				completed++
			}
		}
		score += healthScreeningsWeight * float64(completed) / float64(len(profile.RecommendedScreenings))
	}

	return capScore(score)
}

// compatibilityScore rates the declared role against the breed profile.
// Internal only: it informs review, never a public denial.
func (e *Engine) compatibilityScore(dog *dogmodels.Dog) float64 {
	profile, ok := e.breeds.Lookup(dog.Breed)
	if !ok {
		return compatibilityUnknownBreed
	}
	switch {
	case profile.IsIdealRole(dog.ServiceRole):
		return compatibilityIdeal
	case profile.IsSuitableRole(dog.ServiceRole):
		return compatibilitySuitable
	default:
		return compatibilityOffProfile
	}
}

func hasActiveType(records []*recmodels.NormalizedRecord, t recmodels.DocumentType) bool {
	for _, r := range records {
		if r.DocumentType == t && r.IsActive {
			return true
		}
	}
	return false
}

func hasActiveScreening(records []*recmodels.NormalizedRecord) bool {
	for _, r := range records {
		if r.IsActive && r.DocumentType.ContainsScreening() {
			return true
		}
	}
	return false
}

func hasActiveScreeningKeyword(records []*recmodels.NormalizedRecord, keyword string) bool {
	for _, r := range records {
		if r.IsActive && strings.Contains(string(r.DocumentType), keyword) {
			return true
		}
	}
	return false
}

func capScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}
