package engine

import (
	"fmt"

	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
)

// mismatchFlags reports plausible-but-unusual combinations for human
// review. A mismatch flag is never a basis for public denial; it only
// holds a dog at GREEN until reviewed.
func (e *Engine) mismatchFlags(dog *dogmodels.Dog, records []*recmodels.NormalizedRecord) []string {
	var flags []string

	// Size vs task for mobility work. An unset weight skips the check
	// rather than flagging.
	if dog.ServiceRole == dogmodels.RoleMobility && dog.WeightLbs > 0 && dog.WeightLbs < mobilityMinWeightLbs {
		flags = append(flags, fmt.Sprintf(
			"Small size (%.0f lbs) for mobility task - requires additional documentation", dog.WeightLbs))
	}

	profile, ok := e.breeds.Lookup(dog.Breed)
	if !ok {
		// Unknown breed is neutral: no breed-based flags.
		return flags
	}

	if !profile.IsIdealRole(dog.ServiceRole) && !profile.IsSuitableRole(dog.ServiceRole) {
		flags = append(flags, fmt.Sprintf(
			"Breed-task mismatch: %s not typically used for %s", dog.Breed, dog.ServiceRole))
	}

	// One flag per missing entry of the breed's two most important
	// screenings.
	for _, keyword := range profile.TopScreenings(2) {
		if !hasActiveScreeningKeyword(records, keyword) {
			flags = append(flags, fmt.Sprintf(
				"Missing recommended screening: %s for %s", keyword, dog.Breed))
		}
	}

	return flags
}
