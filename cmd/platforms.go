package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/bootstrap"
)

// platformsCommand manages the marketplace catalog.
func platformsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Manage the marketplace platform catalog",
	}

	cmd.AddCommand(platformsListCommand())
	cmd.AddCommand(platformsSeedCommand())

	return cmd
}

func platformsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active platforms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(ctx)
			if err != nil {
				return fmt.Errorf("failed to build application: %w", err)
			}
			defer app.Close()

			platforms, err := app.PlatformRepo.ListActive(ctx)
			if err != nil {
				return fmt.Errorf("failed to list platforms: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Name", "Base URL", "Active"})
			for _, p := range platforms {
				t.AppendRow(table.Row{p.ID, p.Name, p.BaseURL, p.IsActive})
			}
			t.AppendFooter(table.Row{"Total", len(platforms), "", ""})
			t.Render()

			return nil
		},
	}
}

func platformsSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default platform catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(ctx)
			if err != nil {
				return fmt.Errorf("failed to build application: %w", err)
			}
			defer app.Close()

			if err := app.SeedPlatforms(ctx); err != nil {
				return fmt.Errorf("failed to seed platforms: %w", err)
			}

			fmt.Fprintln(os.Stdout, "Platform catalog seeded.")
			return nil
		},
	}
}
