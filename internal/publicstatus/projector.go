// Package publicstatus derives the ADA-safe summary a business sees
// when scanning a dog.
//
// The projector re-derives its booleans from records independently of
// the verification engine. It must never import the verification,
// fraud, or breed packages; the import graph is the enforcement
// mechanism for the audience separation guarantee.
package publicstatus

import (
	"strings"
	"time"

	dogmodels "pawport/internal/dog/models"
	recmodels "pawport/internal/record/models"
)

const (
	expiringSoonWindow = 30 * 24 * time.Hour

	// genericTasksDescription is returned when no training record
	// carries a certified task list.
	genericTasksDescription = "Service dog tasks"
)

// Project builds the public summary from the canonical record shape.
// Pure function: the caller supplies the snapshot and the clock.
func Project(dog *dogmodels.Dog, handler *dogmodels.Handler, records []*recmodels.NormalizedRecord, now time.Time) Summary {
	return Summary{
		DogID:       dog.ID.String(),
		DogName:     dog.Name,
		DogPhotoURL: dog.PhotoURL,
		HandlerName: handler.Name,

		VerificationLevel: dog.VerificationLevel.String(),
		ServiceRole:       dog.ServiceRole.String(),
		TasksDescription:  tasksDescription(records),

		VaccinationStatus:      vaccinationStatus(records, now),
		TrainingVerified:       anyActiveTrainingVerified(records),
		VetVerified:            anyActiveVetVerified(records),
		PublicAccessTestPassed: anyActivePublicAccessTest(records),
		BehaviorStatus:         BehaviorCalm,
	}
}

// vaccinationStatus evaluates expiring-soon before already-expired on
// purpose: a dog with one vaccination expiring in 10 days and another
// already expired reports "expiring_soon".
func vaccinationStatus(records []*recmodels.NormalizedRecord, now time.Time) VaccinationStatus {
	var vaccinations []*recmodels.NormalizedRecord
	for _, r := range records {
		if r.WalletCategory == recmodels.CategoryVaccinations && r.IsActive {
			vaccinations = append(vaccinations, r)
		}
	}
	if len(vaccinations) == 0 {
		return VaccinationExpired
	}

	var expiringSoon, current bool
	for _, r := range vaccinations {
		if r.ExpirationDate == nil {
			current = true
			continue
		}
		switch {
		case r.ExpirationDate.Before(now):
			// already expired; only counts if nothing better exists
		case r.ExpirationDate.Sub(now) <= expiringSoonWindow:
			expiringSoon = true
		default:
			current = true
		}
	}
	if expiringSoon {
		return VaccinationExpiringSoon
	}
	if current {
		return VaccinationCurrent
	}
	return VaccinationExpired
}

func anyActiveTrainingVerified(records []*recmodels.NormalizedRecord) bool {
	for _, r := range records {
		if r.IsActive && r.WalletCategory == recmodels.CategoryTrainingVerification && r.TrainerVerified {
			return true
		}
	}
	return false
}

func anyActiveVetVerified(records []*recmodels.NormalizedRecord) bool {
	for _, r := range records {
		if r.IsActive && r.VetVerified {
			return true
		}
	}
	return false
}

func anyActivePublicAccessTest(records []*recmodels.NormalizedRecord) bool {
	for _, r := range records {
		if r.IsActive && r.DocumentType == recmodels.DocTypePublicAccessTest {
			return true
		}
	}
	return false
}

// tasksDescription returns the first non-empty certified task list from
// active training records, joined for display.
func tasksDescription(records []*recmodels.NormalizedRecord) string {
	for _, r := range records {
		if !r.IsActive || r.WalletCategory != recmodels.CategoryTrainingVerification {
			continue
		}
		if tasks := r.TasksCertified(); len(tasks) > 0 {
			return strings.Join(tasks, ", ")
		}
	}
	return genericTasksDescription
}
