package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	dogmodels "pawport/internal/dog/models"
	dogstore "pawport/internal/dog/store"
	"pawport/internal/record/models"
	recstore "pawport/internal/record/store"
	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
	"pawport/pkg/platform/audit"
	auditmocks "pawport/pkg/platform/audit/mocks"
	"pawport/pkg/requestcontext"
)

type stubRecomputer struct {
	calls []id.DogID
	err   error
}

func (r *stubRecomputer) Recompute(_ context.Context, dogID id.DogID) error {
	r.calls = append(r.calls, dogID)
	return r.err
}

type WalletServiceSuite struct {
	suite.Suite

	ctx       context.Context
	now       time.Time
	dogs      *dogstore.InMemoryDogStore
	docs      *recstore.InMemoryDocumentStore
	records   *recstore.InMemoryRecordStore
	recompute *stubRecomputer
	events    []audit.Event
	svc       *Service

	handlerID id.HandlerID
	dogID     id.DogID
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.dogs = dogstore.NewInMemoryDogStore()
	s.docs = recstore.NewInMemoryDocumentStore()
	s.records = recstore.NewInMemoryRecordStore()
	s.recompute = &stubRecomputer{}
	s.events = nil

	ctrl := gomock.NewController(s.T())
	publisher := auditmocks.NewMockPublisher(ctrl)
	publisher.EXPECT().
		Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.events = append(s.events, event)
			return nil
		}).
		AnyTimes()

	s.handlerID = id.NewHandlerID()
	s.dogID = id.NewDogID()
	s.Require().NoError(s.dogs.Create(s.ctx, &dogmodels.Dog{
		ID:                s.dogID,
		HandlerID:         s.handlerID,
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		ServiceRole:       dogmodels.RoleGuide,
		VerificationLevel: dogmodels.LevelYellow,
	}))

	s.svc = New(s.dogs, s.docs, s.records,
		WithAuditPublisher(publisher),
		WithRecomputer(s.recompute),
	)
}

func (s *WalletServiceSuite) upload(filename string) (*UploadResult, error) {
	return s.svc.UploadDocument(s.ctx, UploadInput{
		DogID:     s.dogID,
		HandlerID: s.handlerID,
		Filename:  filename,
		MimeType:  "application/pdf",
		Content:   []byte("file content for " + filename),
	})
}

func (s *WalletServiceSuite) eventTypes() []audit.EventType {
	types := make([]audit.EventType, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type)
	}
	return types
}

func (s *WalletServiceSuite) TestUploadCreatesRecord() {
	result, err := s.upload("rabies_certificate.pdf")
	s.Require().NoError(err)
	s.Require().NotNil(result.Record)

	s.Run("document is fully processed", func() {
		s.Equal(models.DocStatusProcessed, result.Document.Status)
		s.Equal(models.DocTypeRabiesCertificate, result.Document.DetectedType)
		s.Equal(result.Record.ID, result.Document.NormalizedRecordID)
	})

	s.Run("record carries extracted dates", func() {
		s.Equal(models.CategoryVaccinations, result.Record.WalletCategory)
		s.Equal(s.now.Truncate(24*time.Hour), result.Record.RecordDate)
		s.Require().NotNil(result.Record.ExpirationDate)
		s.Equal(s.now.AddDate(2, 0, 0).Truncate(24*time.Hour), *result.Record.ExpirationDate)
		s.False(result.Record.IsExpired)
		s.True(result.Record.IsActive)
	})

	s.Run("record and document are persisted", func() {
		stored, err := s.records.FindByID(s.ctx, result.Record.ID)
		s.Require().NoError(err)
		s.Equal(s.dogID, stored.DogID)

		doc, err := s.docs.FindByID(s.ctx, result.Document.ID)
		s.Require().NoError(err)
		s.Equal(models.DocStatusProcessed, doc.Status)
	})

	s.Run("recompute was triggered", func() {
		s.Equal([]id.DogID{s.dogID}, s.recompute.calls)
	})

	s.Run("audit trail covers the pipeline", func() {
		s.Equal([]audit.EventType{
			audit.EventDocumentUploaded,
			audit.EventRecordNormalized,
		}, s.eventTypes())
	})
}

func (s *WalletServiceSuite) TestSuspiciousUploadHeldForReview() {
	result, err := s.upload("fake_rabies_certificate.pdf")
	s.Require().NoError(err)

	s.Nil(result.Record, "held documents must not produce a record")
	s.Equal(models.DocStatusManualReview, result.Document.Status)
	s.Empty(s.recompute.calls, "held documents must not trigger a recompute")

	s.Equal([]audit.EventType{
		audit.EventDocumentUploaded,
		audit.EventFraudFlagsRaised,
		audit.EventDocumentHeldForReview,
	}, s.eventTypes())
}

func (s *WalletServiceSuite) TestUploadForAnotherHandlersDog() {
	_, err := s.svc.UploadDocument(s.ctx, UploadInput{
		DogID:     s.dogID,
		HandlerID: id.NewHandlerID(),
		Filename:  "rabies.pdf",
		Content:   []byte("content"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "foreign dogs read as not found")
	s.Empty(s.events, "nothing is audited for a rejected upload")
}

func (s *WalletServiceSuite) TestUploadForUnknownDog() {
	_, err := s.svc.UploadDocument(s.ctx, UploadInput{
		DogID:     id.NewDogID(),
		HandlerID: s.handlerID,
		Filename:  "rabies.pdf",
		Content:   []byte("content"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *WalletServiceSuite) TestRecomputeFailureDoesNotFailUpload() {
	s.recompute.err = dErrors.New(dErrors.CodeInternal, "engine unavailable")

	result, err := s.upload("rabies_certificate.pdf")
	s.Require().NoError(err)
	s.NotNil(result.Record)
	s.Len(s.recompute.calls, 1)
}

func (s *WalletServiceSuite) TestListRecords() {
	result, err := s.upload("rabies_certificate.pdf")
	s.Require().NoError(err)

	s.Run("owner sees the records", func() {
		records, err := s.svc.ListRecords(s.ctx, s.handlerID, s.dogID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(result.Record.ID, records[0].ID)
	})

	s.Run("other handlers see not found", func() {
		_, err := s.svc.ListRecords(s.ctx, id.NewHandlerID(), s.dogID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
