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

// PostgresRecordStore persists normalized records via pgx. ExtractedData
// lands in a jsonb column.
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRecordStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

const recordColumns = `id, dog_id, raw_document_id, wallet_category, document_type,
	extracted_data, record_date, expiration_date,
	vet_verified, vet_id, vet_name, vet_verified_at,
	trainer_verified, trainer_id, trainer_name, trainer_verified_at,
	is_active, is_expired, created_at, updated_at`

func (s *PostgresRecordStore) Create(ctx context.Context, r *models.NormalizedRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO normalized_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		r.ID.String(), r.DogID.String(), nullableID(r.RawDocumentID.String(), r.RawDocumentID.IsNil()),
		r.WalletCategory.String(), r.DocumentType.String(),
		r.ExtractedData, r.RecordDate, r.ExpirationDate,
		r.VetVerified, r.VetID, r.VetName, r.VetVerifiedAt,
		r.TrainerVerified, r.TrainerID, r.TrainerName, r.TrainerVerifiedAt,
		r.IsActive, r.IsExpired, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) FindByID(ctx context.Context, recordID id.RecordID) (*models.NormalizedRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM normalized_records WHERE id = $1`, recordID.String())
	return scanRecord(row)
}

func (s *PostgresRecordStore) ListByDog(ctx context.Context, dogID id.DogID) ([]*models.NormalizedRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM normalized_records WHERE dog_id = $1 ORDER BY record_date`, dogID.String())
	if err != nil {
		return nil, fmt.Errorf("list records by dog: %w", err)
	}
	defer rows.Close()

	var out []*models.NormalizedRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func scanRecord(row rowScanner) (*models.NormalizedRecord, error) {
	var (
		r              models.NormalizedRecord
		recordID       string
		dogID          string
		rawDocID       *string
		category, docT string
	)
	err := row.Scan(&recordID, &dogID, &rawDocID, &category, &docT,
		&r.ExtractedData, &r.RecordDate, &r.ExpirationDate,
		&r.VetVerified, &r.VetID, &r.VetName, &r.VetVerifiedAt,
		&r.TrainerVerified, &r.TrainerID, &r.TrainerName, &r.TrainerVerifiedAt,
		&r.IsActive, &r.IsExpired, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	parsedRecord, err := id.ParseRecordID(recordID)
	if err != nil {
		return nil, fmt.Errorf("stored record id: %w", err)
	}
	parsedDog, err := id.ParseDogID(dogID)
	if err != nil {
		return nil, fmt.Errorf("stored dog id: %w", err)
	}
	r.ID = parsedRecord
	r.DogID = parsedDog
	if rawDocID != nil {
		parsedDoc, err := id.ParseDocumentID(*rawDocID)
		if err != nil {
			return nil, fmt.Errorf("stored raw document id: %w", err)
		}
		r.RawDocumentID = parsedDoc
	}
	r.WalletCategory = models.WalletCategory(category)
	r.DocumentType = models.DocumentType(docT)
	return &r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableID(s string, isNil bool) *string {
	if isNil {
		return nil
	}
	return &s
}
