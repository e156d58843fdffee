package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// PlatformRepository handles database operations for platforms.
type PlatformRepository struct {
	db *sqlx.DB
}

// NewPlatformRepository creates a new platform repository.
func NewPlatformRepository(db *sqlx.DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// GetByName retrieves a platform by its name.
func (r *PlatformRepository) GetByName(ctx context.Context, name string) (*domain.Platform, error) {
	var platform domain.Platform
	query := `
		SELECT id, name, base_url, is_active, created_at
		FROM platforms
		WHERE name = $1
	`

	err := r.db.GetContext(ctx, &platform, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}

	return &platform, nil
}

// ListActive retrieves all active platforms ordered by name.
func (r *PlatformRepository) ListActive(ctx context.Context) ([]*domain.Platform, error) {
	var platforms []*domain.Platform
	query := `
		SELECT id, name, base_url, is_active, created_at
		FROM platforms
		WHERE is_active = TRUE
		ORDER BY name
	`

	err := r.db.SelectContext(ctx, &platforms, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}

	if platforms == nil {
		platforms = []*domain.Platform{}
	}

	return platforms, nil
}

// Upsert inserts a platform or updates its base URL and active flag.
func (r *PlatformRepository) Upsert(ctx context.Context, platform *domain.Platform) error {
	query := `
		INSERT INTO platforms (name, base_url, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET base_url = EXCLUDED.base_url, is_active = EXCLUDED.is_active
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		platform.Name,
		platform.BaseURL,
		platform.IsActive,
	).Scan(&platform.ID, &platform.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert platform: %w", err)
	}

	return nil
}
