// Package fraud detects document reuse and cross-dog inconsistencies.
//
// The checker emits flags only; it never blocks an upload or a
// verification. Flags flow verbatim into the internal score bundle and
// are admin-audience only.
package fraud

import (
	"fmt"
	"strings"

	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
)

const (
	fraudFlagWeight         = 0.3
	inconsistencyFlagWeight = 0.1
)

// CheckDocumentFraud inspects a newly uploaded document against the
// existing corpus. Both checks are independent and may both fire.
func CheckDocumentFraud(newDoc *recmodels.RawDocument, existing []*recmodels.RawDocument) []string {
	var flags []string

	for _, doc := range existing {
		if doc.FileHash == newDoc.FileHash && doc.DogID != newDoc.DogID {
			flags = append(flags, "Document hash matches another dog's document - possible reuse")
			break
		}
	}

	name := strings.ToLower(newDoc.Filename)
	if strings.Contains(name, "fake") {
		flags = append(flags, "Filename suggests fake document")
	}
	if strings.Contains(name, "invalid") {
		flags = append(flags, "Filename suggests invalid document")
	}

	return flags
}

// CheckDogConsistency looks for identity data shared across dogs.
func CheckDogConsistency(dog *dogmodels.Dog, allDogs []*dogmodels.Dog) []string {
	var flags []string

	if dog.Microchip != "" {
		for _, other := range allDogs {
			if other.ID != dog.ID && other.Microchip == dog.Microchip {
				flags = append(flags, fmt.Sprintf("Microchip %s used by multiple dogs", dog.Microchip))
				break
			}
		}
	}

	return flags
}

// ComputeFraudRiskScore weights fraud flags more heavily than
// inconsistency flags. Additive on purpose: more flags always means a
// higher or equal score, capped at 1.0.
func ComputeFraudRiskScore(fraudFlags, inconsistencyFlags []string) float64 {
	if len(fraudFlags) == 0 && len(inconsistencyFlags) == 0 {
		return 0
	}
	score := fraudFlagWeight*float64(len(fraudFlags)) + inconsistencyFlagWeight*float64(len(inconsistencyFlags))
	if score > 1.0 {
		return 1.0
	}
	return score
}
