package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawport/internal/record/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// PostgresDocumentStore persists raw documents via pgx.
type PostgresDocumentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDocumentStore(pool *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

const documentColumns = `id, dog_id, handler_id, filename, file_hash, file_size, mime_type,
	uploaded_at, uploaded_by, status, detected_type, confidence_score,
	processing_error, normalized_record_id`

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *models.RawDocument) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO raw_documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		doc.ID.String(), doc.DogID.String(), doc.HandlerID.String(),
		doc.Filename, doc.FileHash, doc.FileSize, doc.MimeType,
		doc.UploadedAt, doc.UploadedBy, string(doc.Status), doc.DetectedType.String(),
		doc.ConfidenceScore, doc.ProcessingError,
		nullableID(doc.NormalizedRecordID.String(), doc.NormalizedRecordID.IsNil()),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) Update(ctx context.Context, doc *models.RawDocument) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE raw_documents SET
			status = $2, detected_type = $3, confidence_score = $4,
			processing_error = $5, normalized_record_id = $6
		WHERE id = $1`,
		doc.ID.String(), string(doc.Status), doc.DetectedType.String(),
		doc.ConfidenceScore, doc.ProcessingError,
		nullableID(doc.NormalizedRecordID.String(), doc.NormalizedRecordID.IsNil()),
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresDocumentStore) FindByID(ctx context.Context, docID id.DocumentID) (*models.RawDocument, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM raw_documents WHERE id = $1`, docID.String())
	return scanDocument(row)
}

func (s *PostgresDocumentStore) ListByDog(ctx context.Context, dogID id.DogID) ([]*models.RawDocument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM raw_documents WHERE dog_id = $1`, dogID.String())
	if err != nil {
		return nil, fmt.Errorf("list documents by dog: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *PostgresDocumentStore) ListAll(ctx context.Context) ([]*models.RawDocument, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+documentColumns+` FROM raw_documents`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func scanDocument(row rowScanner) (*models.RawDocument, error) {
	var (
		doc       models.RawDocument
		docID     string
		dogID     string
		handlerID string
		status    string
		detected  string
		recordID  *string
	)
	err := row.Scan(&docID, &dogID, &handlerID, &doc.Filename, &doc.FileHash,
		&doc.FileSize, &doc.MimeType, &doc.UploadedAt, &doc.UploadedBy,
		&status, &detected, &doc.ConfidenceScore, &doc.ProcessingError, &recordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	parsedDoc, err := id.ParseDocumentID(docID)
	if err != nil {
		return nil, fmt.Errorf("stored document id: %w", err)
	}
	parsedDog, err := id.ParseDogID(dogID)
	if err != nil {
		return nil, fmt.Errorf("stored dog id: %w", err)
	}
	parsedHandler, err := id.ParseHandlerID(handlerID)
	if err != nil {
		return nil, fmt.Errorf("stored handler id: %w", err)
	}
	doc.ID = parsedDoc
	doc.DogID = parsedDog
	doc.HandlerID = parsedHandler
	doc.Status = models.DocumentStatus(status)
	doc.DetectedType = models.DocumentType(detected)
	if recordID != nil {
		parsedRecord, err := id.ParseRecordID(*recordID)
		if err != nil {
			return nil, fmt.Errorf("stored record id: %w", err)
		}
		doc.NormalizedRecordID = parsedRecord
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]*models.RawDocument, error) {
	var out []*models.RawDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
