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

// PostgresDogStore persists dogs in Postgres via pgx.
type PostgresDogStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDogStore(pool *pgxpool.Pool) *PostgresDogStore {
	return &PostgresDogStore{pool: pool}
}

const dogColumns = `id, handler_id, name, breed, weight_lbs, microchip, photo_url,
	service_role, verification_level, created_at, updated_at`

func (s *PostgresDogStore) Create(ctx context.Context, dog *models.Dog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dogs (`+dogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		dog.ID.String(), dog.HandlerID.String(), dog.Name, dog.Breed, dog.WeightLbs,
		dog.Microchip, dog.PhotoURL, dog.ServiceRole.String(),
		dog.VerificationLevel.String(), dog.CreatedAt, dog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dog: %w", err)
	}
	return nil
}

func (s *PostgresDogStore) FindByID(ctx context.Context, dogID id.DogID) (*models.Dog, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id = $1`, dogID.String())
	return scanDog(row)
}

func (s *PostgresDogStore) ListByHandler(ctx context.Context, handlerID id.HandlerID) ([]*models.Dog, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dogColumns+` FROM dogs WHERE handler_id = $1`, handlerID.String())
	if err != nil {
		return nil, fmt.Errorf("list dogs by handler: %w", err)
	}
	defer rows.Close()
	return collectDogs(rows)
}

func (s *PostgresDogStore) ListAll(ctx context.Context) ([]*models.Dog, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dogColumns+` FROM dogs`)
	if err != nil {
		return nil, fmt.Errorf("list dogs: %w", err)
	}
	defer rows.Close()
	return collectDogs(rows)
}

func (s *PostgresDogStore) UpdateVerificationLevel(ctx context.Context, dogID id.DogID, level models.VerificationLevel) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE dogs SET verification_level = $2, updated_at = now() WHERE id = $1`,
		dogID.String(), level.String(),
	)
	if err != nil {
		return fmt.Errorf("update verification level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDog(row rowScanner) (*models.Dog, error) {
	var (
		dog        models.Dog
		dogID      string
		handlerID  string
		role, lvl  string
	)
	err := row.Scan(&dogID, &handlerID, &dog.Name, &dog.Breed, &dog.WeightLbs,
		&dog.Microchip, &dog.PhotoURL, &role, &lvl, &dog.CreatedAt, &dog.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan dog: %w", err)
	}
	parsedDog, err := id.ParseDogID(dogID)
	if err != nil {
		return nil, fmt.Errorf("stored dog id: %w", err)
	}
	parsedHandler, err := id.ParseHandlerID(handlerID)
	if err != nil {
		return nil, fmt.Errorf("stored handler id: %w", err)
	}
	dog.ID = parsedDog
	dog.HandlerID = parsedHandler
	dog.ServiceRole = models.ServiceRole(role)
	dog.VerificationLevel = models.VerificationLevel(lvl)
	return &dog, nil
}

func collectDogs(rows pgx.Rows) ([]*models.Dog, error) {
	var out []*models.Dog
	for rows.Next() {
		dog, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dog)
	}
	return out, rows.Err()
}
