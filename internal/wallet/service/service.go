// Package service implements document intake for the handler wallet.
//
// Upload runs the full pipeline: persist the raw document, classify
// and extract, gate on confidence, create the normalized record, then
// trigger a verification recompute. Fraud checks flag but never block.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	dogstore "pawport/internal/dog/store"
	"pawport/internal/fraud"
	"pawport/internal/record/models"
	recstore "pawport/internal/record/store"
	"pawport/internal/wallet/normalizer"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/platform/audit"
	"pawport/pkg/platform/sentinel"
	"pawport/pkg/requestcontext"
)

// Recomputer triggers a verification recomputation for one dog. The
// wallet depends on this narrow interface rather than the verification
// service so the dependency only points one way.
type Recomputer interface {
	Recompute(ctx context.Context, dogID id.DogID) error
}

// Service handles document uploads and normalization.
type Service struct {
	dogs      dogstore.DogStore
	docs      recstore.DocumentStore
	records   recstore.RecordStore
	recompute Recomputer
	publisher audit.Publisher
	log       *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithAuditPublisher sets the audit event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRecomputer sets the verification recompute trigger.
func WithRecomputer(r Recomputer) Option {
	return func(s *Service) { s.recompute = r }
}

func New(dogs dogstore.DogStore, docs recstore.DocumentStore, records recstore.RecordStore, opts ...Option) *Service {
	s := &Service{
		dogs:    dogs,
		docs:    docs,
		records: records,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadInput carries one uploaded file.
type UploadInput struct {
	DogID     id.DogID
	HandlerID id.HandlerID
	Filename  string
	MimeType  string
	Content   []byte
}

// UploadResult is the outcome of one upload. Record is nil when the
// document was held for manual review.
type UploadResult struct {
	Document *models.RawDocument
	Record   *models.NormalizedRecord
}

// UploadDocument ingests a file for a dog. The document always lands in
// the store, even when held for review; the normalized record is only
// created when classification confidence clears the auto-process bar.
func (s *Service) UploadDocument(ctx context.Context, in UploadInput) (*UploadResult, error) {
	dog, err := s.dogs.FindByID(ctx, in.DogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dog not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load dog")
	}
	if dog.HandlerID != in.HandlerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "dog not found")
	}

	now := requestcontext.Now(ctx)
	sum := sha256.Sum256(in.Content)

	doc := &models.RawDocument{
		ID:         id.NewDocumentID(),
		DogID:      in.DogID,
		HandlerID:  in.HandlerID,
		Filename:   in.Filename,
		FileHash:   hex.EncodeToString(sum[:]),
		FileSize:   int64(len(in.Content)),
		MimeType:   in.MimeType,
		UploadedAt: now,
		UploadedBy: in.HandlerID.String(),
		Status:     models.DocStatusUploaded,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store document")
	}
	s.emit(ctx, audit.Event{
		Type:       audit.EventDocumentUploaded,
		Timestamp:  now,
		ActorType:  "handler",
		ActorID:    in.HandlerID.String(),
		DogID:      in.DogID,
		DocumentID: doc.ID,
		RequestID:  requestcontext.RequestID(ctx),
		Metadata:   map[string]string{"filename": in.Filename},
	})

	existing, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	if flags := fraud.CheckDocumentFraud(doc, existing); len(flags) > 0 {
		s.log.WarnContext(ctx, "fraud flags on upload",
			"dog_id", in.DogID.String(), "document_id", doc.ID.String(), "flags", len(flags))
		s.emit(ctx, audit.Event{
			Type:       audit.EventFraudFlagsRaised,
			Timestamp:  now,
			ActorType:  "system",
			DogID:      in.DogID,
			DocumentID: doc.ID,
			RequestID:  requestcontext.RequestID(ctx),
			Metadata:   map[string]string{"flag_count": strconv.Itoa(len(flags))},
		})
	}

	doc.Status = models.DocStatusProcessing
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update document")
	}

	result := normalizer.Process(doc, now)
	doc.DetectedType = result.DetectedType
	doc.ConfidenceScore = result.ConfidenceScore
	doc.Status = result.Status

	if result.Status == models.DocStatusManualReview {
		if err := s.docs.Update(ctx, doc); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update document")
		}
		s.emit(ctx, audit.Event{
			Type:       audit.EventDocumentHeldForReview,
			Timestamp:  now,
			ActorType:  "system",
			DogID:      in.DogID,
			DocumentID: doc.ID,
			RequestID:  requestcontext.RequestID(ctx),
			Metadata: map[string]string{
				"detected_type": result.DetectedType.String(),
				"confidence":    strconv.FormatFloat(result.ConfidenceScore, 'f', 2, 64),
			},
		})
		return &UploadResult{Document: doc}, nil
	}

	record, err := s.buildRecord(doc, result, now)
	if err != nil {
		doc.Status = models.DocStatusFailed
		doc.ProcessingError = err.Error()
		if updateErr := s.docs.Update(ctx, doc); updateErr != nil {
			s.log.ErrorContext(ctx, "mark document failed", "error", updateErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "normalize document")
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store record")
	}

	doc.NormalizedRecordID = record.ID
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update document")
	}
	s.emit(ctx, audit.Event{
		Type:       audit.EventRecordNormalized,
		Timestamp:  now,
		ActorType:  "system",
		DogID:      in.DogID,
		RecordID:   record.ID,
		DocumentID: doc.ID,
		RequestID:  requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"document_type":   record.DocumentType.String(),
			"wallet_category": record.WalletCategory.String(),
		},
	})

	if s.recompute != nil {
		if err := s.recompute.Recompute(ctx, in.DogID); err != nil {
			// The record is stored; the next recompute picks it up.
			s.log.ErrorContext(ctx, "recompute after upload", "dog_id", in.DogID.String(), "error", err)
		}
	}

	return &UploadResult{Document: doc, Record: record}, nil
}

// ListRecords returns a dog's normalized records for the owning handler.
func (s *Service) ListRecords(ctx context.Context, handlerID id.HandlerID, dogID id.DogID) ([]*models.NormalizedRecord, error) {
	dog, err := s.dogs.FindByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dog not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load dog")
	}
	if dog.HandlerID != handlerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "dog not found")
	}
	records, err := s.records.ListByDog(ctx, dogID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list records")
	}
	return records, nil
}

func (s *Service) buildRecord(doc *models.RawDocument, result normalizer.Result, now time.Time) (*models.NormalizedRecord, error) {
	recordDate := now
	if d, ok := parseExtractedDate(result.ExtractedData, "date_administered"); ok {
		recordDate = d
	} else if d, ok := parseExtractedDate(result.ExtractedData, "date_completed"); ok {
		recordDate = d
	}

	var expiration *time.Time
	if d, ok := parseExtractedDate(result.ExtractedData, "expiration_date"); ok {
		expiration = &d
	}

	record := &models.NormalizedRecord{
		ID:             id.NewRecordID(),
		DogID:          doc.DogID,
		RawDocumentID:  doc.ID,
		WalletCategory: result.WalletCategory,
		DocumentType:   result.DetectedType,
		ExtractedData:  result.ExtractedData,
		RecordDate:     recordDate,
		ExpirationDate: expiration,
		IsActive:       true,
		IsExpired:      expiration != nil && expiration.Before(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

func parseExtractedDate(data map[string]any, key string) (time.Time, bool) {
	raw, ok := data[key]
	if !ok {
		return time.Time{}, false
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.log.WarnContext(ctx, "audit emit failed", "event", string(event.Type), "error", err)
	}
}
