// Package refresh periodically re-scrapes the most-searched products so
// their prices stay current without user traffic.
package refresh

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/planner"
)

// searchDispatcher is the slice of the dispatcher the refresher needs.
type searchDispatcher interface {
	Dispatch(ctx context.Context, spec *domain.SearchSpec) (*domain.GroupRun, error)
}

// Refresher schedules periodic price refreshes for popular products.
type Refresher struct {
	dispatcher searchDispatcher
	products   database.ProductRepositoryInterface
	platforms  database.PlatformRepositoryInterface
	schedule   string
	topN       int
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	logger     logger.Interface
}

// New creates a refresher with the given cron schedule.
func New(
	dispatcher searchDispatcher,
	products database.ProductRepositoryInterface,
	platforms database.PlatformRepositoryInterface,
	schedule string,
	topN int,
	log logger.Interface,
) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		dispatcher: dispatcher,
		products:   products,
		platforms:  platforms,
		schedule:   schedule,
		topN:       topN,
		cron:       cron.New(),
		ctx:        ctx,
		cancel:     cancel,
		logger:     log.WithComponent("refresh"),
	}
}

// Start registers the cron entry and begins scheduling.
func (r *Refresher) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if runErr := r.RefreshPopular(r.ctx); runErr != nil {
			r.logger.Error("scheduled refresh failed", "error", runErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register refresh schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("price refresh scheduled", "schedule", r.schedule, "top_n", r.topN)
	return nil
}

// Stop cancels in-flight refreshes and waits for cron entries to finish.
func (r *Refresher) Stop() {
	r.cancel()
	<-r.cron.Stop().Done()
}

// RefreshPopular dispatches a fresh search for each of the most-searched
// products across all active platforms.
func (r *Refresher) RefreshPopular(ctx context.Context) error {
	popular, err := r.products.MostSearched(ctx, r.topN)
	if err != nil {
		return fmt.Errorf("failed to load popular products: %w", err)
	}
	if len(popular) == 0 {
		r.logger.Debug("no products to refresh")
		return nil
	}

	active, err := r.platforms.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active platforms: %w", err)
	}
	names := make([]string, len(active))
	for i, p := range active {
		names[i] = p.Name
	}

	refreshed := 0
	for _, product := range popular {
		spec, err := planner.Plan(planner.Request{Query: product.Name}, names)
		if err != nil {
			r.logger.Warn("skipping unrefreshable product",
				"product_id", product.ID,
				"error", err.Error(),
			)
			continue
		}

		if _, err := r.dispatcher.Dispatch(ctx, spec); err != nil {
			r.logger.Error("failed to refresh product",
				"product_id", product.ID,
				"error", err.Error(),
			)
			continue
		}
		refreshed++
	}

	r.logger.Info("price refresh dispatched", "products", refreshed)
	return nil
}
