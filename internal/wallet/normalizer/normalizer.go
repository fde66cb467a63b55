// Package normalizer classifies uploaded documents and extracts
// structured fields.
//
// This is a deterministic stand-in for a real OCR/ML pipeline: the
// classification keys off the filename and the extraction returns
// canned fields per document type. The surrounding lifecycle (status
// transitions, confidence gating, normalized record creation) is the
// production shape.
package normalizer

import (
	"strings"
	"time"

	"pawport/internal/record/models"
)

const (
	defaultConfidence    = 0.85
	suspiciousConfidence = 0.45

	// Documents below this confidence are held for manual review
	// instead of producing a normalized record.
	autoProcessThreshold = 0.7
)

// Result is the outcome of processing one raw document.
type Result struct {
	DetectedType    models.DocumentType
	WalletCategory  models.WalletCategory
	ExtractedData   map[string]any
	ConfidenceScore float64
	Status          models.DocumentStatus
}

// Process classifies and extracts from a raw document.
func Process(doc *models.RawDocument, now time.Time) Result {
	name := strings.ToLower(doc.Filename)

	detected := ClassifyFilename(name)
	confidence := defaultConfidence
	if strings.Contains(name, "fake") {
		confidence = suspiciousConfidence
	}

	status := models.DocStatusProcessed
	if confidence <= autoProcessThreshold {
		status = models.DocStatusManualReview
	}

	return Result{
		DetectedType:    detected,
		WalletCategory:  models.CategoryFor(detected),
		ExtractedData:   extractFields(name, detected, now),
		ConfidenceScore: confidence,
		Status:          status,
	}
}

// ClassifyFilename maps a lowercased filename to a document type.
// First matching rule wins.
func ClassifyFilename(name string) models.DocumentType {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "rabies"):
		return models.DocTypeRabiesCertificate
	case strings.Contains(name, "dhpp") || strings.Contains(name, "dhlpp"):
		return models.DocTypeDHPP
	case strings.Contains(name, "hip") && strings.Contains(name, "screen"):
		return models.DocTypeHipScreening
	case strings.Contains(name, "elbow"):
		return models.DocTypeElbowScreening
	case strings.Contains(name, "eye") || strings.Contains(name, "ophthal"):
		return models.DocTypeEyeScreening
	case strings.Contains(name, "cardiac") || strings.Contains(name, "heart"):
		return models.DocTypeCardiacScreening
	case strings.Contains(name, "wellness") || strings.Contains(name, "annual"):
		return models.DocTypeWellnessExam
	case strings.Contains(name, "task") && strings.Contains(name, "attest"):
		return models.DocTypeServiceTaskAttestation
	case strings.Contains(name, "train") && strings.Contains(name, "cert"):
		return models.DocTypeTrainingCertificate
	case strings.Contains(name, "public") && strings.Contains(name, "access"):
		return models.DocTypePublicAccessTest
	case strings.Contains(name, "health") && strings.Contains(name, "cert"):
		return models.DocTypeHealthCertificate
	case strings.Contains(name, "surgery"):
		return models.DocTypeSurgeryReport
	case strings.Contains(name, "prescription") || strings.Contains(name, "rx"):
		return models.DocTypePrescription
	default:
		return models.DocTypeOther
	}
}

func extractFields(name string, docType models.DocumentType, now time.Time) map[string]any {
	extracted := map[string]any{
		"source_filename": name,
	}
	switch docType {
	case models.DocTypeRabiesCertificate:
		extracted["vaccine_name"] = "Rabies"
		extracted["date_administered"] = now.Format("2006-01-02")
		extracted["expiration_date"] = now.AddDate(2, 0, 0).Format("2006-01-02")
		extracted["vet_name"] = "Dr. Example"
		extracted["clinic"] = "Example Animal Hospital"
	case models.DocTypeServiceTaskAttestation:
		extracted["trainer_name"] = "Example Training Institute"
		extracted["date_completed"] = now.Format("2006-01-02")
		extracted["tasks_certified"] = []string{"PTSD alert", "Grounding techniques"}
	}
	return extracted
}
