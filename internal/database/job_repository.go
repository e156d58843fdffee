package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// JobRepository handles database operations for scrape jobs.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	j.id, j.fingerprint, j.search_query, j.platform_id, j.status,
	j.results_count, j.error_message, j.product_ids, j.max_results,
	j.started_at, j.completed_at, j.created_at, j.updated_at,
	p.name AS platform_name
`

// Create inserts a new job in pending state.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO scrape_jobs (id, fingerprint, search_query, platform_id, status, max_results)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		job.ID,
		job.Fingerprint,
		job.SearchQuery,
		job.PlatformID,
		job.Status,
		job.MaxResults,
	).Scan(&job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	query := `
		SELECT ` + jobColumns + `
		FROM scrape_jobs j
		JOIN platforms p ON p.id = j.platform_id
		WHERE j.id = $1
	`

	err := r.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateStatus persists a job's state transition along with results and
// timing. The transition is validated before it hits the database.
func (r *JobRepository) UpdateStatus(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE scrape_jobs
		SET status = $1, results_count = $2, error_message = $3,
		    product_ids = $4, started_at = $5, completed_at = $6, updated_at = NOW()
		WHERE id = $7
	`

	productIDs := job.ProductIDs
	if productIDs == nil {
		productIDs = pq.Int64Array{}
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Status,
		job.ResultsCount,
		job.ErrorMessage,
		productIDs,
		job.StartedAt,
		job.CompletedAt,
		job.ID,
	)

	return execRequireRows(result, err, fmt.Errorf("job not found: %s", job.ID))
}

// ListByFingerprint retrieves the jobs for a logical search created after the
// given time. This is the status tracker's reconciliation read.
func (r *JobRepository) ListByFingerprint(
	ctx context.Context, fingerprint string, since time.Time,
) ([]*domain.Job, error) {
	var jobs []*domain.Job
	query := `
		SELECT ` + jobColumns + `
		FROM scrape_jobs j
		JOIN platforms p ON p.id = j.platform_id
		WHERE j.fingerprint = $1 AND j.created_at >= $2
		ORDER BY j.created_at
	`

	err := r.db.SelectContext(ctx, &jobs, query, fingerprint, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.Job{}
	}

	return jobs, nil
}

// List retrieves jobs with optional status filtering, newest first.
func (r *JobRepository) List(ctx context.Context, status string, limit, offset int) ([]*domain.Job, error) {
	var jobs []*domain.Job
	var query string
	var args []any

	if status != "" {
		query = `
			SELECT ` + jobColumns + `
			FROM scrape_jobs j
			JOIN platforms p ON p.id = j.platform_id
			WHERE j.status = $1
			ORDER BY j.created_at DESC
			LIMIT $2 OFFSET $3
		`
		args = []any{status, limit, offset}
	} else {
		query = `
			SELECT ` + jobColumns + `
			FROM scrape_jobs j
			JOIN platforms p ON p.id = j.platform_id
			ORDER BY j.created_at DESC
			LIMIT $1 OFFSET $2
		`
		args = []any{limit, offset}
	}

	err := r.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	if jobs == nil {
		jobs = []*domain.Job{}
	}

	return jobs, nil
}
