package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawport/internal/verification/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// PostgresScoreStore keeps one row per dog; Save upserts so a
// recomputation atomically replaces the prior bundle.
type PostgresScoreStore struct {
	pool *pgxpool.Pool
}

func NewPostgresScoreStore(pool *pgxpool.Pool) *PostgresScoreStore {
	return &PostgresScoreStore{pool: pool}
}

const bundleColumns = `dog_id, service_eligibility_score, training_evidence_score,
	health_completeness_score, task_breed_compatibility_score,
	fraud_flags, mismatch_flags, requires_human_review, review_reason,
	computed_at, updated_by`

func (s *PostgresScoreStore) Save(ctx context.Context, b *models.InternalScoreBundle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO internal_score_bundles (`+bundleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (dog_id) DO UPDATE SET
			service_eligibility_score = EXCLUDED.service_eligibility_score,
			training_evidence_score = EXCLUDED.training_evidence_score,
			health_completeness_score = EXCLUDED.health_completeness_score,
			task_breed_compatibility_score = EXCLUDED.task_breed_compatibility_score,
			fraud_flags = EXCLUDED.fraud_flags,
			mismatch_flags = EXCLUDED.mismatch_flags,
			requires_human_review = EXCLUDED.requires_human_review,
			review_reason = EXCLUDED.review_reason,
			computed_at = EXCLUDED.computed_at,
			updated_by = EXCLUDED.updated_by`,
		b.DogID.String(), b.ServiceEligibilityScore, b.TrainingEvidenceScore,
		b.HealthCompletenessScore, b.TaskBreedCompatibilityScore,
		b.FraudFlags, b.MismatchFlags, b.RequiresHumanReview, b.ReviewReason,
		b.ComputedAt, b.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("save score bundle: %w", err)
	}
	return nil
}

func (s *PostgresScoreStore) FindByDog(ctx context.Context, dogID id.DogID) (*models.InternalScoreBundle, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bundleColumns+` FROM internal_score_bundles WHERE dog_id = $1`, dogID.String())
	return scanBundle(row)
}

func (s *PostgresScoreStore) ListRequiringReview(ctx context.Context) ([]*models.InternalScoreBundle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+bundleColumns+` FROM internal_score_bundles
		WHERE requires_human_review ORDER BY computed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}
	defer rows.Close()

	var out []*models.InternalScoreBundle
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bundle)
	}
	return out, rows.Err()
}

func scanBundle(row rowScanner) (*models.InternalScoreBundle, error) {
	var (
		b     models.InternalScoreBundle
		dogID string
	)
	err := row.Scan(&dogID, &b.ServiceEligibilityScore, &b.TrainingEvidenceScore,
		&b.HealthCompletenessScore, &b.TaskBreedCompatibilityScore,
		&b.FraudFlags, &b.MismatchFlags, &b.RequiresHumanReview, &b.ReviewReason,
		&b.ComputedAt, &b.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan score bundle: %w", err)
	}
	parsed, err := id.ParseDogID(dogID)
	if err != nil {
		return nil, fmt.Errorf("stored dog id: %w", err)
	}
	b.DogID = parsed
	return &b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
