//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dogmodels "pawport/internal/dog/models"
	dogstore "pawport/internal/dog/store"
	"pawport/internal/record/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
	"pawport/pkg/testutil/containers"
)

type PostgresRecordStoreSuite struct {
	suite.Suite

	ctx     context.Context
	pg      *containers.PostgresContainer
	records *PostgresRecordStore
	docs    *PostgresDocumentStore

	handlerID id.HandlerID
	dogID     id.DogID
}

func TestPostgresRecordStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresRecordStoreSuite))
}

func (s *PostgresRecordStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.records = NewPostgresRecordStore(s.pg.Pool)
	s.docs = NewPostgresDocumentStore(s.pg.Pool)
}

func (s *PostgresRecordStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))

	handlers := dogstore.NewPostgresHandlerStore(s.pg.Pool)
	dogs := dogstore.NewPostgresDogStore(s.pg.Pool)

	s.handlerID = id.NewHandlerID()
	s.Require().NoError(handlers.Create(s.ctx, &dogmodels.Handler{
		ID:               s.handlerID,
		Email:            s.handlerID.String() + "@example.com",
		Name:             "Jordan Smith",
		SubscriptionTier: "free",
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}))
	s.dogID = id.NewDogID()
	s.Require().NoError(dogs.Create(s.ctx, &dogmodels.Dog{
		ID:                s.dogID,
		HandlerID:         s.handlerID,
		Name:              "Scout",
		Breed:             "Labrador Retriever",
		ServiceRole:       dogmodels.RoleGuide,
		VerificationLevel: dogmodels.LevelYellow,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}))
}

func (s *PostgresRecordStoreSuite) newRecord(date time.Time) *models.NormalizedRecord {
	expiration := date.AddDate(2, 0, 0)
	return &models.NormalizedRecord{
		ID:             id.NewRecordID(),
		DogID:          s.dogID,
		WalletCategory: models.CategoryVaccinations,
		DocumentType:   models.DocTypeRabiesCertificate,
		ExtractedData:  map[string]any{"vaccine_name": "Rabies", "date_administered": date.Format("2006-01-02")},
		RecordDate:     date,
		ExpirationDate: &expiration,
		VetVerified:    true,
		VetName:        "Dr. Example",
		IsActive:       true,
		CreatedAt:      date,
		UpdatedAt:      date,
	}
}

func (s *PostgresRecordStoreSuite) TestRecordRoundTrip() {
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	record := s.newRecord(date)
	s.Require().NoError(s.records.Create(s.ctx, record))

	found, err := s.records.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(models.DocTypeRabiesCertificate, found.DocumentType)
	s.Equal("Rabies", found.ExtractedData["vaccine_name"])
	s.Require().NotNil(found.ExpirationDate)
	s.True(found.ExpirationDate.Equal(*record.ExpirationDate))
	s.True(found.VetVerified)

	_, err = s.records.FindByID(s.ctx, id.NewRecordID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRecordStoreSuite) TestListByDogOrdersByDate() {
	base := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	newer := s.newRecord(base)
	older := s.newRecord(base.AddDate(-1, 0, 0))
	s.Require().NoError(s.records.Create(s.ctx, newer))
	s.Require().NoError(s.records.Create(s.ctx, older))

	records, err := s.records.ListByDog(s.ctx, s.dogID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(older.ID, records[0].ID)
	s.Equal(newer.ID, records[1].ID)
}

func (s *PostgresRecordStoreSuite) newDocument() *models.RawDocument {
	return &models.RawDocument{
		ID:         id.NewDocumentID(),
		DogID:      s.dogID,
		HandlerID:  s.handlerID,
		Filename:   "rabies_certificate.pdf",
		FileHash:   "abc123",
		FileSize:   1024,
		MimeType:   "application/pdf",
		UploadedAt: time.Now().UTC(),
		UploadedBy: s.handlerID.String(),
		Status:     models.DocStatusUploaded,
	}
}

func (s *PostgresRecordStoreSuite) TestDocumentLifecycle() {
	doc := s.newDocument()
	s.Require().NoError(s.docs.Create(s.ctx, doc))

	record := s.newRecord(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	record.RawDocumentID = doc.ID
	s.Require().NoError(s.records.Create(s.ctx, record))

	doc.Status = models.DocStatusProcessed
	doc.DetectedType = models.DocTypeRabiesCertificate
	doc.ConfidenceScore = 0.85
	doc.NormalizedRecordID = record.ID
	s.Require().NoError(s.docs.Update(s.ctx, doc))

	found, err := s.docs.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.DocStatusProcessed, found.Status)
	s.Equal(record.ID, found.NormalizedRecordID)
	s.InDelta(0.85, found.ConfidenceScore, 1e-9)
}

func (s *PostgresRecordStoreSuite) TestDocumentUpdateMissing() {
	s.ErrorIs(s.docs.Update(s.ctx, s.newDocument()), sentinel.ErrNotFound)
}

func (s *PostgresRecordStoreSuite) TestDocumentListing() {
	first := s.newDocument()
	second := s.newDocument()
	s.Require().NoError(s.docs.Create(s.ctx, first))
	s.Require().NoError(s.docs.Create(s.ctx, second))

	mine, err := s.docs.ListByDog(s.ctx, s.dogID)
	s.Require().NoError(err)
	s.Len(mine, 2)

	all, err := s.docs.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}
