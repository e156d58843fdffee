// Package status reconciles a dispatched search group against its jobs and
// assembles the consolidated result payload once all jobs are done.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/cache"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// ErrGroupNotFound is returned when a group id is unknown or expired.
var ErrGroupNotFound = errors.New("search group not found")

const (
	// ReconciliationWindow bounds how far back jobs are matched by
	// fingerprint, so stale runs of the same search don't bleed in.
	ReconciliationWindow = 10 * time.Minute

	// maxResultProducts caps how many products a result payload carries.
	maxResultProducts = 50

	percentageMultiplier = 100
)

// Overall states reported to clients.
const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
)

// Progress reports how far a group's jobs have come. Completed counts only
// jobs that finished successfully; failures are reported separately.
type Progress struct {
	Completed  int     `json:"completed"`
	Failed     int     `json:"failed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// JobSummary is one job's externally visible state.
type JobSummary struct {
	ID           string          `json:"id"`
	Platform     string          `json:"platform"`
	Status       domain.JobState `json:"status"`
	ResultsCount int             `json:"results_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// Response is the status payload for one group.
type Response struct {
	GroupID  string         `json:"group_id"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Query    string         `json:"query"`
	Progress Progress       `json:"progress"`
	Jobs     []JobSummary   `json:"jobs"`
	Results  *SearchResults `json:"results,omitempty"`
}

// Tracker answers status queries for dispatched search groups.
type Tracker struct {
	cache     cache.Service
	jobs      database.JobRepositoryInterface
	products  database.ProductRepositoryInterface
	listings  database.ListingRepositoryInterface
	resultTTL time.Duration
	logger    logger.Interface
}

// NewTracker creates a status tracker.
func NewTracker(
	cacheSvc cache.Service,
	jobs database.JobRepositoryInterface,
	products database.ProductRepositoryInterface,
	listings database.ListingRepositoryInterface,
	resultTTL time.Duration,
	log logger.Interface,
) *Tracker {
	return &Tracker{
		cache:     cacheSvc,
		jobs:      jobs,
		products:  products,
		listings:  listings,
		resultTTL: resultTTL,
		logger:    log.WithComponent("status"),
	}
}

// Status reconciles the group's jobs and reports overall progress. When every
// job is terminal it assembles the consolidated results, caches them under
// the fingerprint's result key, and reports completion. A group with failed
// jobs still completes with whatever the successful platforms found.
func (t *Tracker) Status(ctx context.Context, groupID string) (*Response, error) {
	var group domain.GroupRun
	if err := t.cache.Get(ctx, cache.GroupKey(groupID), &group); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group metadata: %w", err)
	}

	since := time.Now().Add(-ReconciliationWindow)
	if group.StartedAt.Before(since) {
		since = group.StartedAt
	}

	jobs, err := t.jobs.ListByFingerprint(ctx, group.Fingerprint, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	jobs = filterGroupJobs(jobs, group.JobIDs)

	resp := &Response{
		GroupID: groupID,
		Query:   group.Query,
	}

	if len(jobs) == 0 {
		resp.Status = StateProcessing
		resp.Message = "Initializing search..."
		resp.Progress = Progress{Total: len(group.JobIDs)}
		resp.Jobs = []JobSummary{}
		return resp, nil
	}

	completed, failed := 0, 0
	for _, job := range jobs {
		switch job.Status {
		case domain.StateCompleted:
			completed++
		case domain.StateFailed:
			failed++
		}
		resp.Jobs = append(resp.Jobs, JobSummary{
			ID:           job.ID,
			Platform:     job.PlatformName,
			Status:       job.Status,
			ResultsCount: job.ResultsCount,
			ErrorMessage: job.ErrorMessage,
		})
	}

	resp.Progress = Progress{
		Completed:  completed,
		Failed:     failed,
		Total:      len(jobs),
		Percentage: float64(completed) / float64(len(jobs)) * percentageMultiplier,
	}

	terminal := completed + failed

	if terminal < len(jobs) {
		resp.Status = StateProcessing
		resp.Message = "Scraping in progress..."
		return resp, nil
	}

	results, err := t.assembleResults(ctx, &group, jobs)
	if err != nil {
		return nil, err
	}

	resp.Status = StateCompleted
	resp.Results = results
	return resp, nil
}

// assembleResults builds, caches, and returns the consolidated payload.
// The product set is exactly what the group's jobs consolidated, so even a
// product whose stored name no longer resembles the query stays in the
// answer.
func (t *Tracker) assembleResults(
	ctx context.Context, group *domain.GroupRun, jobs []*domain.Job,
) (*SearchResults, error) {
	productIDs := collectProductIDs(jobs, maxResultProducts)

	results := &SearchResults{
		Query:       group.Query,
		Platforms:   group.Platforms,
		Products:    []ProductView{},
		CompletedAt: time.Now(),
	}

	if len(productIDs) > 0 {
		products, err := t.products.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}

		listings, err := t.listings.ListByProducts(ctx, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load listings: %w", err)
		}
		byProduct := groupListingsByProduct(listings)

		for _, p := range products {
			view := BuildProductView(p, byProduct[p.ID])
			results.Products = append(results.Products, view)
			results.TotalResults += len(view.Listings)
		}

		if err := t.products.IncrementSearchCount(ctx, productIDs); err != nil {
			// The payload is still valid; popularity tracking can lag.
			t.logger.Warn("failed to increment search counts", "error", err.Error())
		}
	}

	key := cache.ResultKey(group.Fingerprint)
	if err := t.cache.Put(ctx, key, results, t.resultTTL); err != nil {
		t.logger.Warn("failed to cache search results",
			"fingerprint", group.Fingerprint,
			"error", err.Error(),
		)
	}

	return results, nil
}

// CachedResults returns the consolidated payload for a fingerprint, if any.
func (t *Tracker) CachedResults(ctx context.Context, fingerprint string) (*SearchResults, error) {
	var results SearchResults
	if err := t.cache.Get(ctx, cache.ResultKey(fingerprint), &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// collectProductIDs unions the product ids the group's jobs consolidated,
// in job order, capped at limit.
func collectProductIDs(jobs []*domain.Job, limit int) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, job := range jobs {
		for _, id := range job.ProductIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// filterGroupJobs keeps only jobs belonging to the group. An empty id list
// keeps everything the fingerprint matched.
func filterGroupJobs(jobs []*domain.Job, ids []string) []*domain.Job {
	if len(ids) == 0 {
		return jobs
	}
	member := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}
	out := jobs[:0]
	for _, job := range jobs {
		if _, ok := member[job.ID]; ok {
			out = append(out, job)
		}
	}
	return out
}
