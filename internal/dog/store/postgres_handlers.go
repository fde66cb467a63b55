package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawport/internal/dog/models"
	id "pawport/pkg/domain"
	"pawport/pkg/platform/sentinel"
)

// PostgresHandlerStore persists handler accounts via pgx.
type PostgresHandlerStore struct {
	pool *pgxpool.Pool
}

func NewPostgresHandlerStore(pool *pgxpool.Pool) *PostgresHandlerStore {
	return &PostgresHandlerStore{pool: pool}
}

const handlerColumns = `id, email, name, phone, subscription_tier, created_at, updated_at`

func (s *PostgresHandlerStore) Create(ctx context.Context, handler *models.Handler) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO handlers (`+handlerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		handler.ID.String(), handler.Email, handler.Name, handler.Phone,
		handler.SubscriptionTier, handler.CreatedAt, handler.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert handler: %w", err)
	}
	return nil
}

func (s *PostgresHandlerStore) FindByID(ctx context.Context, handlerID id.HandlerID) (*models.Handler, error) {
	var (
		handler models.Handler
		rawID   string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+handlerColumns+` FROM handlers WHERE id = $1`, handlerID.String()).
		Scan(&rawID, &handler.Email, &handler.Name, &handler.Phone,
			&handler.SubscriptionTier, &handler.CreatedAt, &handler.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan handler: %w", err)
	}
	parsed, err := id.ParseHandlerID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored handler id: %w", err)
	}
	handler.ID = parsed
	return &handler, nil
}
