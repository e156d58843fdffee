// Package cmd implements the command-line interface for the price-tracker
// service. It provides the root command plus subcommands for running the
// server, one-shot searches, and platform catalog management.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is overridable at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "price-tracker",
	Short: "A multi-marketplace price comparison service",
	Long: `price-tracker searches multiple online marketplaces concurrently,
consolidates the listings it finds into a product catalog, and tracks
price history over time.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so configuration sees the variables.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "price-tracker version %s\n", version)
		},
	})

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(searchCommand())
	rootCmd.AddCommand(platformsCommand())
}
