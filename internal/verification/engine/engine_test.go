package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pawport/internal/breed"
	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
	"pawport/internal/verification/models"
	id "pawport/pkg/domain"
)

type EngineSuite struct {
	suite.Suite
	engine *Engine
	now    time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = New(breed.MustLoadDefault())
	s.now = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func (s *EngineSuite) newDog(breedName string, role dogmodels.ServiceRole, weight float64) *dogmodels.Dog {
	return &dogmodels.Dog{
		ID:                id.NewDogID(),
		HandlerID:         id.NewHandlerID(),
		Name:              "Scout",
		Breed:             breedName,
		WeightLbs:         weight,
		ServiceRole:       role,
		VerificationLevel: dogmodels.LevelYellow,
	}
}

func (s *EngineSuite) record(docType recmodels.DocumentType, opts ...func(*recmodels.NormalizedRecord)) *recmodels.NormalizedRecord {
	r := &recmodels.NormalizedRecord{
		ID:             id.NewRecordID(),
		WalletCategory: recmodels.CategoryFor(docType),
		DocumentType:   docType,
		RecordDate:     s.now.AddDate(0, -3, 0),
		IsActive:       true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func vetVerified(r *recmodels.NormalizedRecord)     { r.VetVerified = true }
func trainerVerified(r *recmodels.NormalizedRecord) { r.TrainerVerified = true }
func inactive(r *recmodels.NormalizedRecord)        { r.IsActive = false }

// fullDocs is a Labrador guide dog with everything: active verified
// vaccinations, verified recent training, and all four recommended
// screenings.
func (s *EngineSuite) fullDocs() []*recmodels.NormalizedRecord {
	return []*recmodels.NormalizedRecord{
		s.record(recmodels.DocTypeRabiesCertificate, vetVerified),
		s.record(recmodels.DocTypeDHPP, vetVerified),
		s.record(recmodels.DocTypeServiceTaskAttestation, trainerVerified),
		s.record(recmodels.DocTypeTrainingCertificate, trainerVerified),
		s.record(recmodels.DocTypePublicAccessTest, trainerVerified),
		s.record(recmodels.DocTypeHipScreening, vetVerified),
		s.record(recmodels.DocTypeElbowScreening, vetVerified),
		s.record(recmodels.DocTypeEyeScreening, vetVerified),
		s.record(recmodels.DocTypeCardiacScreening, vetVerified),
	}
}

func (s *EngineSuite) compute(dog *dogmodels.Dog, records []*recmodels.NormalizedRecord, fraudFlags ...string) models.InternalScoreBundle {
	return s.engine.ComputeInternalScores(Input{
		Dog:        dog,
		Records:    records,
		FraudFlags: fraudFlags,
		Now:        s.now,
	})
}

func (s *EngineSuite) TestNoRecords() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)
	bundle := s.compute(dog, nil)

	s.Zero(bundle.ServiceEligibilityScore)
	s.Zero(bundle.TrainingEvidenceScore)
	s.Zero(bundle.HealthCompletenessScore)
	s.True(bundle.RequiresHumanReview)

	level := s.engine.DetermineVerificationLevel(dog, nil, bundle)
	s.Equal(dogmodels.LevelYellow, level)
}

func (s *EngineSuite) TestFullyDocumentedDog() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)
	records := s.fullDocs()
	bundle := s.compute(dog, records)

	s.InDelta(1.0, bundle.ServiceEligibilityScore, 1e-9)
	s.InDelta(1.0, bundle.TrainingEvidenceScore, 1e-9)
	s.InDelta(1.0, bundle.HealthCompletenessScore, 1e-9)
	s.InDelta(1.0, bundle.TaskBreedCompatibilityScore, 1e-9)
	s.Empty(bundle.MismatchFlags)
	s.False(bundle.RequiresHumanReview)
	s.Empty(bundle.ReviewReason)

	level := s.engine.DetermineVerificationLevel(dog, records, bundle)
	s.Equal(dogmodels.LevelBlue, level)
}

func (s *EngineSuite) TestSmallMobilityDogFlagged() {
	dog := s.newDog("Border Collie", dogmodels.RoleMobility, 30)
	records := s.fullDocs()
	bundle := s.compute(dog, records)

	s.True(bundle.RequiresHumanReview)
	s.NotEmpty(bundle.MismatchFlags)
	s.Contains(bundle.MismatchFlags[0], "Small size (30 lbs) for mobility task")
	// Mismatch text wins over every other reason category.
	s.Contains(bundle.ReviewReason, "Small size")

	// Review caps the tier at GREEN even with BLUE-qualifying scores.
	level := s.engine.DetermineVerificationLevel(dog, records, bundle)
	s.Equal(dogmodels.LevelGreen, level)
}

func (s *EngineSuite) TestScoreBounds() {
	dogs := []*dogmodels.Dog{
		s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62),
		s.newDog("Unknown Mix", dogmodels.RoleMobility, 20),
		s.newDog("Cavalier King Charles Spaniel", dogmodels.RoleMobility, 15),
	}
	recordSets := [][]*recmodels.NormalizedRecord{
		nil,
		s.fullDocs(),
		{s.record(recmodels.DocTypeRabiesCertificate, inactive)},
	}
	for _, dog := range dogs {
		for _, records := range recordSets {
			bundle := s.compute(dog, records)
			for _, score := range []float64{
				bundle.ServiceEligibilityScore,
				bundle.TrainingEvidenceScore,
				bundle.HealthCompletenessScore,
				bundle.TaskBreedCompatibilityScore,
			} {
				s.GreaterOrEqual(score, 0.0)
				s.LessOrEqual(score, 1.0)
			}
		}
	}
}

func (s *EngineSuite) TestEligibilityIgnoresInactiveRecords() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)
	records := []*recmodels.NormalizedRecord{
		s.record(recmodels.DocTypeRabiesCertificate, inactive),
		s.record(recmodels.DocTypeServiceTaskAttestation),
	}
	bundle := s.compute(dog, records)
	s.InDelta(0.3, bundle.ServiceEligibilityScore, 1e-9)
}

func (s *EngineSuite) TestTrainingScore() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)

	s.Run("no training records scores zero", func() {
		records := []*recmodels.NormalizedRecord{
			s.record(recmodels.DocTypeRabiesCertificate),
		}
		bundle := s.compute(dog, records)
		s.Zero(bundle.TrainingEvidenceScore)
	})

	s.Run("unverified old training scores base only", func() {
		old := s.record(recmodels.DocTypeTrainingCertificate)
		old.RecordDate = s.now.AddDate(-5, 0, 0)
		bundle := s.compute(dog, []*recmodels.NormalizedRecord{old})
		s.InDelta(0.5, bundle.TrainingEvidenceScore, 1e-9)
	})

	s.Run("recency window is calendar-year granular", func() {
		// December of (now.Year - 2) still counts as recent.
		boundary := s.record(recmodels.DocTypeTrainingCertificate)
		boundary.RecordDate = time.Date(s.now.Year()-2, time.December, 1, 0, 0, 0, 0, time.UTC)
		bundle := s.compute(dog, []*recmodels.NormalizedRecord{boundary})
		s.InDelta(0.7, bundle.TrainingEvidenceScore, 1e-9)
	})
}

func (s *EngineSuite) TestHealthScreeningFraction() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)
	// Rabies + DHPP + vet verification + 2 of 4 recommended screenings.
	records := []*recmodels.NormalizedRecord{
		s.record(recmodels.DocTypeRabiesCertificate, vetVerified),
		s.record(recmodels.DocTypeDHPP),
		s.record(recmodels.DocTypeHipScreening),
		s.record(recmodels.DocTypeElbowScreening),
	}
	bundle := s.compute(dog, records)
	s.InDelta(0.3+0.2+0.2+0.3*2.0/4.0, bundle.HealthCompletenessScore, 1e-9)
}

func (s *EngineSuite) TestCompatibilityScore() {
	tests := []struct {
		name  string
		breed string
		role  dogmodels.ServiceRole
		want  float64
	}{
		{"ideal role", "Labrador Retriever", dogmodels.RoleGuide, 1.0},
		{"suitable role", "Labrador Retriever", dogmodels.RolePsychiatric, 0.8},
		{"off-profile role", "Cavalier King Charles Spaniel", dogmodels.RoleMobility, 0.6},
		{"unknown breed", "Unknown Mix", dogmodels.RoleGuide, 0.5},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			dog := s.newDog(tt.breed, tt.role, 60)
			bundle := s.compute(dog, s.fullDocs())
			s.InDelta(tt.want, bundle.TaskBreedCompatibilityScore, 1e-9)
		})
	}
}

func (s *EngineSuite) TestReviewReasonPrecedence() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)

	s.Run("fraud flags without mismatch", func() {
		bundle := s.compute(dog, s.fullDocs(), "Filename suggests fake document")
		s.True(bundle.RequiresHumanReview)
		s.Equal(models.ReasonFraudFlags, bundle.ReviewReason)
	})

	s.Run("low scores without flags", func() {
		// An unknown breed has no screening recommendations, so an empty
		// record set produces low scores but no mismatch text.
		unknown := s.newDog("Unknown Mix", dogmodels.RoleGuide, 60)
		bundle := s.compute(unknown, nil)
		s.True(bundle.RequiresHumanReview)
		s.Equal(models.ReasonLowScores, bundle.ReviewReason)
	})

	s.Run("mismatch text wins over low scores", func() {
		bundle := s.compute(dog, nil)
		s.True(bundle.RequiresHumanReview)
		s.Contains(bundle.ReviewReason, "Missing recommended screening")
	})

	s.Run("mismatch text wins over fraud", func() {
		small := s.newDog("Labrador Retriever", dogmodels.RoleMobility, 30)
		bundle := s.compute(small, s.fullDocs(), "Filename suggests fake document")
		s.Contains(bundle.ReviewReason, "Small size")
		s.NotEqual(models.ReasonFraudFlags, bundle.ReviewReason)
	})
}

func (s *EngineSuite) TestFraudFlagsCopiedVerbatim() {
	dog := s.newDog("Labrador Retriever", dogmodels.RoleGuide, 62)
	flags := []string{"Document hash matches another dog's document - possible reuse"}
	bundle := s.engine.ComputeInternalScores(Input{Dog: dog, Records: s.fullDocs(), FraudFlags: flags, Now: s.now})
	s.Equal(flags, bundle.FraudFlags)

	// Mutating the input slice must not reach the bundle.
	flags[0] = "mutated"
	s.NotEqual("mutated", bundle.FraudFlags[0])
}
