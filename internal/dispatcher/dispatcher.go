// Package dispatcher fans a search out into per-platform scrape jobs and
// drives each job through its lifecycle.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/cache"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/connector"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/planner"
)

// jobSubmitter is the slice of the worker pool the dispatcher needs.
type jobSubmitter interface {
	Submit(ctx context.Context, job *domain.Job) error
}

// resultConsolidator persists a completed job's raw listings.
type resultConsolidator interface {
	Consolidate(ctx context.Context, job *domain.Job, rawListings []domain.RawListing) (*consolidator.Result, error)
}

// Dispatcher creates scrape job groups and executes individual jobs.
type Dispatcher struct {
	jobs         database.JobRepositoryInterface
	platforms    database.PlatformRepositoryInterface
	registry     *connector.Registry
	pool         jobSubmitter
	consolidator resultConsolidator
	cache        cache.Service
	cfg          config.ScraperConfig
	groupTTL     time.Duration
	logger       logger.Interface
}

// New creates a dispatcher.
func New(
	jobs database.JobRepositoryInterface,
	platforms database.PlatformRepositoryInterface,
	registry *connector.Registry,
	pool jobSubmitter,
	cons resultConsolidator,
	cacheSvc cache.Service,
	cfg config.ScraperConfig,
	groupTTL time.Duration,
	log logger.Interface,
) *Dispatcher {
	return &Dispatcher{
		jobs:         jobs,
		platforms:    platforms,
		registry:     registry,
		pool:         pool,
		consolidator: cons,
		cache:        cacheSvc,
		cfg:          cfg,
		groupTTL:     groupTTL,
		logger:       log.WithComponent("dispatcher"),
	}
}

// SetPool injects the worker pool. The pool's job handler is the
// dispatcher's Execute method, so the two are wired after construction.
func (d *Dispatcher) SetPool(pool jobSubmitter) {
	d.pool = pool
}

// Dispatch creates one pending job per platform, stores the group metadata,
// and hands the jobs to the worker pool. It returns as soon as the jobs are
// queued; callers poll the status tracker for progress.
func (d *Dispatcher) Dispatch(ctx context.Context, spec *domain.SearchSpec) (*domain.GroupRun, error) {
	fingerprint := planner.Fingerprint(spec)
	groupID := uuid.NewString()

	group := &domain.GroupRun{
		ID:          groupID,
		Fingerprint: fingerprint,
		Query:       spec.QueryText,
		Platforms:   spec.Platforms,
		StartedAt:   time.Now(),
	}

	var created []*domain.Job
	for _, name := range spec.Platforms {
		platform, err := d.platforms.GetByName(ctx, name)
		if err != nil {
			d.logger.Warn("skipping platform not in catalog",
				"platform", name,
				"error", err.Error(),
			)
			continue
		}

		job := &domain.Job{
			ID:           uuid.NewString(),
			Fingerprint:  fingerprint,
			SearchQuery:  spec.QueryText,
			PlatformID:   platform.ID,
			PlatformName: platform.Name,
			Status:       domain.StatePending,
			MaxResults:   spec.MaxResults,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := d.jobs.Create(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create job for %s: %w", name, err)
		}

		created = append(created, job)
		group.JobIDs = append(group.JobIDs, job.ID)
	}

	if len(created) == 0 {
		return nil, fmt.Errorf("no dispatchable platforms in %v", spec.Platforms)
	}

	if err := d.cache.Put(ctx, cache.GroupKey(groupID), group, d.groupTTL); err != nil {
		return nil, fmt.Errorf("failed to store group metadata: %w", err)
	}

	d.logger.Info("dispatched search",
		"group_id", groupID,
		"fingerprint", fingerprint,
		"query", spec.QueryText,
		"jobs", len(created),
	)

	// Scraping outlives the originating request.
	submitCtx := context.WithoutCancel(ctx)
	go func() {
		for _, job := range created {
			if err := d.pool.Submit(submitCtx, job); err != nil {
				d.logger.Error("failed to submit job",
					"job_id", job.ID,
					"error", err.Error(),
				)
				job.ErrorMessage = err.Error()
				if terr := d.transition(submitCtx, job, domain.StateFailed); terr != nil {
					d.logger.Error("failed to mark unsubmittable job",
						"job_id", job.ID,
						"error", terr.Error(),
					)
				}
			}
		}
	}()

	return group, nil
}

// Execute runs a single scrape job to a terminal state. It is the handler
// the worker pool invokes.
func (d *Dispatcher) Execute(ctx context.Context, job *domain.Job) error {
	conn, err := d.registry.Get(job.PlatformName)
	if err != nil {
		// Unknown platform is fatal; never retried.
		job.ErrorMessage = err.Error()
		if terr := d.transition(ctx, job, domain.StateFailed); terr != nil {
			return terr
		}
		return err
	}

	if err := d.transition(ctx, job, domain.StateRunning); err != nil {
		return err
	}

	rawListings, searchErr := d.searchWithRetries(ctx, conn, job)
	if searchErr != nil {
		job.ErrorMessage = searchErr.Error()
		if terr := d.transition(ctx, job, domain.StateFailed); terr != nil {
			return terr
		}
		return searchErr
	}

	result, consErr := d.consolidator.Consolidate(ctx, job, rawListings)
	if consErr != nil {
		job.ErrorMessage = consErr.Error()
		if terr := d.transition(ctx, job, domain.StateFailed); terr != nil {
			return terr
		}
		return consErr
	}

	job.ResultsCount = result.Stored
	job.ProductIDs = pq.Int64Array(result.ProductIDs)
	if err := d.transition(ctx, job, domain.StateCompleted); err != nil {
		return err
	}

	d.logger.Info("job completed",
		"job_id", job.ID,
		"platform", job.PlatformName,
		"results", result.Stored,
	)
	return nil
}

// searchWithRetries invokes the connector, retrying transient failures with
// a fixed backoff. Fatal connector errors abort immediately.
func (d *Dispatcher) searchWithRetries(
	ctx context.Context, conn connector.Connector, job *domain.Job,
) ([]domain.RawListing, error) {
	var lastErr error

	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			d.logger.Warn("retrying scrape",
				"job_id", job.ID,
				"platform", job.PlatformName,
				"attempt", attempt,
				"error", lastErr.Error(),
			)
			select {
			case <-time.After(d.cfg.RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
		rawListings, err := conn.Search(attemptCtx, job.SearchQuery, job.MaxResults)
		cancel()

		if err == nil {
			return rawListings, nil
		}

		lastErr = err
		if connector.IsFatal(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("scrape failed after %d retries: %w", d.cfg.MaxRetries, lastErr)
}

// transition validates and persists a job state change, stamping the
// lifecycle timestamps.
func (d *Dispatcher) transition(ctx context.Context, job *domain.Job, to domain.JobState) error {
	if err := domain.ValidateStateTransition(job.Status, to); err != nil {
		return err
	}

	now := time.Now()
	job.Status = to
	job.UpdatedAt = now

	switch to {
	case domain.StateRunning:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case domain.StateCompleted, domain.StateFailed:
		job.CompletedAt = &now
	case domain.StatePending:
	}

	if err := d.jobs.UpdateStatus(ctx, job); err != nil {
		return fmt.Errorf("failed to persist %s transition for job %s: %w", to, job.ID, err)
	}
	return nil
}
