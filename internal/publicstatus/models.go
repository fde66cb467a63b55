package publicstatus

// VaccinationStatus is the only health-adjacent fact a business sees.
type VaccinationStatus string

const (
	VaccinationCurrent      VaccinationStatus = "current"
	VaccinationExpiringSoon VaccinationStatus = "expiring_soon"
	VaccinationExpired      VaccinationStatus = "expired"
)

// BehaviorStatus reflects recent scan history. Until incident tracking
// lands this is always "calm"; the enum exists so the field's value set
// is closed.
type BehaviorStatus string

const (
	BehaviorCalm        BehaviorStatus = "calm"
	BehaviorControlled  BehaviorStatus = "controlled"
	BehaviorUnderReview BehaviorStatus = "under_review"
)

// Summary is the ADA-safe projection a business receives on scan.
//
// The type is the compliance boundary: every field is a string or a
// bool, so no internal score, flag list, or breed datum can occupy it.
// Tests assert this shape by reflection. Do not add numeric or slice
// fields here.
type Summary struct {
	DogID       string `json:"dog_id"`
	DogName     string `json:"dog_name"`
	DogPhotoURL string `json:"dog_photo_url,omitempty"`
	HandlerName string `json:"handler_name"`

	VerificationLevel string `json:"verification_level"`
	ServiceRole       string `json:"service_role"`
	TasksDescription  string `json:"tasks_description"`

	VaccinationStatus      VaccinationStatus `json:"vaccination_status"`
	TrainingVerified       bool              `json:"training_verified"`
	VetVerified            bool              `json:"vet_verified"`
	PublicAccessTestPassed bool              `json:"public_access_test_passed"`
	BehaviorStatus         BehaviorStatus    `json:"behavior_status"`
}
