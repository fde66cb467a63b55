// Package models defines raw documents and normalized records.
//
// A RawDocument is the uploaded file before processing. A
// NormalizedRecord is the typed, dated, categorized result the
// verification engine and public projector consume. Records are
// append-only: the normalizer creates them and downstream components
// are read-only over them.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	id "pawport/pkg/domain"
)

// DocumentType is the closed set of document classifications.
type DocumentType string

const (
	DocTypeRabiesCertificate      DocumentType = "rabies_certificate"
	DocTypeDHPP                   DocumentType = "dhpp"
	DocTypeHipScreening           DocumentType = "hip_screening"
	DocTypeElbowScreening         DocumentType = "elbow_screening"
	DocTypeEyeScreening           DocumentType = "eye_screening"
	DocTypeCardiacScreening       DocumentType = "cardiac_screening"
	DocTypeWellnessExam           DocumentType = "wellness_exam"
	DocTypeServiceTaskAttestation DocumentType = "service_task_attestation"
	DocTypeTrainingCertificate    DocumentType = "training_certificate"
	DocTypePublicAccessTest       DocumentType = "public_access_test"
	DocTypeHealthCertificate      DocumentType = "health_certificate"
	DocTypeSurgeryReport          DocumentType = "surgery_report"
	DocTypePrescription           DocumentType = "prescription"
	DocTypeOther                  DocumentType = "other"
)

func (t DocumentType) String() string { return string(t) }

// IsValid reports whether t is a member of the closed enum.
func (t DocumentType) IsValid() bool {
	_, ok := categoryByType[t]
	return ok
}

// ContainsScreening reports whether the document type is a health
// screening. The engine's eligibility and health scores key off this.
func (t DocumentType) ContainsScreening() bool {
	return strings.Contains(string(t), "screening")
}

// WalletCategory is the coarse grouping a record appears under.
type WalletCategory string

const (
	CategoryVaccinations         WalletCategory = "vaccinations"
	CategoryMedicalRecords       WalletCategory = "medical_records"
	CategoryTrainingVerification WalletCategory = "training_verification"
	CategoryIdentityOwnership    WalletCategory = "identity_ownership"
)

func (c WalletCategory) String() string { return string(c) }

// categoryByType is the single source of truth for the document type to
// wallet category mapping. Records never self-report a category that
// disagrees with it.
var categoryByType = map[DocumentType]WalletCategory{
	DocTypeRabiesCertificate:      CategoryVaccinations,
	DocTypeDHPP:                   CategoryVaccinations,
	DocTypeHipScreening:           CategoryMedicalRecords,
	DocTypeElbowScreening:         CategoryMedicalRecords,
	DocTypeEyeScreening:           CategoryMedicalRecords,
	DocTypeCardiacScreening:       CategoryMedicalRecords,
	DocTypeWellnessExam:           CategoryMedicalRecords,
	DocTypeHealthCertificate:      CategoryMedicalRecords,
	DocTypeSurgeryReport:          CategoryMedicalRecords,
	DocTypePrescription:           CategoryMedicalRecords,
	DocTypeServiceTaskAttestation: CategoryTrainingVerification,
	DocTypeTrainingCertificate:    CategoryTrainingVerification,
	DocTypePublicAccessTest:       CategoryTrainingVerification,
	DocTypeOther:                  CategoryIdentityOwnership,
}

// CategoryFor returns the wallet category derived from a document type.
// Unknown types fall back to identity/ownership, matching the
// normalizer's catch-all bucket.
func CategoryFor(t DocumentType) WalletCategory {
	if c, ok := categoryByType[t]; ok {
		return c
	}
	return CategoryIdentityOwnership
}

// DocumentStatus tracks a raw document through the processing pipeline.
type DocumentStatus string

const (
	DocStatusUploaded     DocumentStatus = "uploaded"
	DocStatusProcessing   DocumentStatus = "processing"
	DocStatusProcessed    DocumentStatus = "processed"
	DocStatusFailed       DocumentStatus = "failed"
	DocStatusManualReview DocumentStatus = "manual_review"
)

// RawDocument is an uploaded file awaiting (or past) normalization.
type RawDocument struct {
	ID        id.DocumentID `json:"id"`
	DogID     id.DogID      `json:"dog_id"`
	HandlerID id.HandlerID  `json:"handler_id"`

	Filename string `json:"filename"`
	FileHash string `json:"file_hash"` // sha256, for reuse detection
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`

	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`

	Status          DocumentStatus `json:"status"`
	DetectedType    DocumentType   `json:"detected_type,omitempty"`
	ConfidenceScore float64        `json:"confidence_score,omitempty"`
	ProcessingError string         `json:"processing_error,omitempty"`

	NormalizedRecordID id.RecordID `json:"normalized_record_id,omitempty"`
}

// NormalizedRecord is the canonical record shape. Everything downstream
// of the normalizer consumes this and only this; there is no legacy
// flat shape to sniff for.
type NormalizedRecord struct {
	ID            id.RecordID   `json:"id"`
	DogID         id.DogID      `json:"dog_id"`
	RawDocumentID id.DocumentID `json:"raw_document_id,omitempty"`

	WalletCategory WalletCategory `json:"wallet_category"`
	DocumentType   DocumentType   `json:"document_type"`

	// ExtractedData holds type-specific fields pulled from the document
	// (vaccine name, screening grade, tasks certified, ...).
	ExtractedData map[string]any `json:"extracted_data,omitempty"`

	RecordDate     time.Time  `json:"record_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	VetVerified   bool       `json:"vet_verified"`
	VetID         string     `json:"vet_id,omitempty"`
	VetName       string     `json:"vet_name,omitempty"`
	VetVerifiedAt *time.Time `json:"vet_verified_at,omitempty"`

	TrainerVerified   bool       `json:"trainer_verified"`
	TrainerID         string     `json:"trainer_id,omitempty"`
	TrainerName       string     `json:"trainer_name,omitempty"`
	TrainerVerifiedAt *time.Time `json:"trainer_verified_at,omitempty"`

	IsActive  bool `json:"is_active"`
	IsExpired bool `json:"is_expired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces the classification invariants at the normalizer
// boundary so the engine never sees a malformed record.
func (r *NormalizedRecord) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DocumentType, validation.Required, validation.By(func(any) error {
			if !r.DocumentType.IsValid() {
				return validation.NewError("record_document_type", "unknown document type")
			}
			return nil
		})),
		validation.Field(&r.WalletCategory, validation.Required, validation.By(func(any) error {
			if r.WalletCategory != CategoryFor(r.DocumentType) {
				return validation.NewError("record_category_mismatch",
					"wallet category is not derivable from document type")
			}
			return nil
		})),
		validation.Field(&r.RecordDate, validation.Required),
	)
}

// TasksCertified returns the certified task list extracted from a
// training document, or nil when none was extracted.
func (r *NormalizedRecord) TasksCertified() []string {
	raw, ok := r.ExtractedData["tasks_certified"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		tasks := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tasks = append(tasks, s)
			}
		}
		return tasks
	}
	return nil
}
