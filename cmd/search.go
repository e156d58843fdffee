package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/planner"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
)

const (
	// defaultSearchWait bounds how long a one-shot search waits for all
	// platform jobs to finish before printing whatever completed.
	defaultSearchWait = 2 * time.Minute

	searchPollInterval = 2 * time.Second

	// maxTitleWidth caps how wide the listing title column renders.
	maxTitleWidth = 60
)

// searchCommand runs a single search from the terminal: it dispatches
// scraping jobs, waits for them to finish, and prints a comparison table.
func searchCommand() *cobra.Command {
	var (
		platforms  []string
		maxResults int
		wait       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot price search across marketplaces",
		Long: `Dispatches a search against the configured marketplaces, waits for the
scraping jobs to finish, and prints the consolidated results.

Examples:
  # Search all active platforms
  price-tracker search "wireless headphones"

  # Restrict to specific platforms
  price-tracker search "wireless headphones" --platforms ebay,amazon`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], platforms, maxResults, wait)
		},
	}

	cmd.Flags().StringSliceVarP(&platforms, "platforms", "p", nil, "platforms to search (default: all active)")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", planner.DefaultMaxResults, "maximum results per platform")
	cmd.Flags().DurationVar(&wait, "wait", defaultSearchWait, "how long to wait for results")

	return cmd
}

func runSearch(ctx context.Context, query string, platforms []string, maxResults int, wait time.Duration) error {
	app, err := bootstrap.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer app.Close()

	if err := app.SeedPlatforms(ctx); err != nil {
		return fmt.Errorf("failed to seed platform catalog: %w", err)
	}

	if err := app.Pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.Config.Scraper.DrainTimeout)
		defer cancel()
		_ = app.Pool.Stop(stopCtx)
	}()

	spec, err := buildSpec(ctx, app, query, platforms, maxResults)
	if err != nil {
		return err
	}

	group, err := app.Dispatcher.Dispatch(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to dispatch search: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Searching %s for %q (group %s)...\n",
		strings.Join(spec.Platforms, ", "), spec.QueryText, group.ID)

	resp, err := waitForResults(ctx, app, group.ID, wait)
	if err != nil {
		return err
	}

	renderResults(resp)
	return nil
}

// buildSpec resolves the active platform set and normalizes the request.
func buildSpec(
	ctx context.Context,
	app *bootstrap.App,
	query string,
	platforms []string,
	maxResults int,
) (*domain.SearchSpec, error) {
	active, err := app.PlatformRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active platforms: %w", err)
	}
	activeNames := make([]string, 0, len(active))
	for _, p := range active {
		activeNames = append(activeNames, p.Name)
	}

	planned, err := planner.Plan(planner.Request{
		Query:      query,
		Platforms:  platforms,
		MaxResults: maxResults,
	}, activeNames)
	if err != nil {
		var vErr *planner.ValidationError
		if errors.As(err, &vErr) {
			return nil, fmt.Errorf("invalid search: %w", vErr)
		}
		return nil, err
	}
	return planned, nil
}

// waitForResults polls the status tracker until the group completes or the
// wait budget is spent. A timeout still returns the last status so partial
// results can be shown.
func waitForResults(ctx context.Context, app *bootstrap.App, groupID string, wait time.Duration) (*status.Response, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(searchPollInterval)
	defer ticker.Stop()

	var last *status.Response
	for {
		resp, err := app.Tracker.Status(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("failed to check search status: %w", err)
		}
		last = resp

		if resp.Status == status.StateCompleted {
			return resp, nil
		}
		if time.Now().After(deadline) {
			fmt.Fprintf(os.Stdout, "Timed out after %s with %d/%d jobs finished; showing partial status.\n",
				wait, resp.Progress.Completed, resp.Progress.Total)
			return last, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// renderResults prints the consolidated products and their cheapest offers.
func renderResults(resp *status.Response) {
	if resp.Results == nil || len(resp.Results.Products) == 0 {
		fmt.Fprintf(os.Stdout, "No results found for query: %s\n", resp.Query)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxTitleWidth},
	})
	t.AppendHeader(table.Row{"#", "Product", "Offers", "Lowest Price", "Platform", "Price Range"})

	totalListings := 0
	for i, product := range resp.Results.Products {
		lowest := "-"
		platform := "-"
		if product.LowestPrice != nil {
			lowest = fmt.Sprintf("%.2f %s", product.LowestPrice.Price, product.LowestPrice.Currency)
			platform = product.LowestPrice.Platform
		}
		priceRange := "-"
		if product.PriceRange != nil {
			priceRange = fmt.Sprintf("%.2f - %.2f", product.PriceRange.Min, product.PriceRange.Max)
		}

		t.AppendRow(table.Row{
			i + 1,
			product.Name,
			len(product.Listings),
			lowest,
			platform,
			priceRange,
		})
		totalListings += len(product.Listings)
	}

	t.AppendFooter(table.Row{"Total", len(resp.Results.Products), totalListings, "", "", fmt.Sprintf("Query: %s", resp.Query)})

	fmt.Fprintf(os.Stdout, "\nSearch Results:\n")
	t.Render()
}
