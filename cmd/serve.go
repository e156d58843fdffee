package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/bootstrap"
)

// serveCommand starts the HTTP API and the scraping pipeline.
func serveCommand() *cobra.Command {
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the price-tracker HTTP server",
		Long: `Starts the full service: the HTTP API, the scraping worker pool,
and the periodic price refresher. Blocks until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(ctx)
			if err != nil {
				return fmt.Errorf("failed to build application: %w", err)
			}
			defer app.Close()

			if !skipSeed {
				if err := app.SeedPlatforms(ctx); err != nil {
					return fmt.Errorf("failed to seed platform catalog: %w", err)
				}
			}

			return app.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "skip seeding the default platform catalog")

	return cmd
}
