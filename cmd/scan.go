// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/orgscout/internal/config"
	"github.com/naka-gawa/orgscout/internal/gateway"
	"github.com/naka-gawa/orgscout/internal/storage"
	"github.com/naka-gawa/orgscout/internal/usecase"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Resolves company names to GitHub orgs and saves repository metrics",
	Long: `Reads company names (one per line) from an input file, resolves each to a
GitHub organization, and saves per-repository activity metrics as JSON
documents under the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// Configuration comes from the environment (and .env); flags override.
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if input, _ := cmd.Flags().GetString("input"); input != "" {
			cfg.InputFile = input
		}
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			cfg.OutputDir = output
		}
		limit, _ := cmd.Flags().GetInt("limit")

		data, err := os.ReadFile(cfg.InputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", cfg.InputFile, err)
			os.Exit(1)
		}
		lines := strings.Split(string(data), "\n")

		// Inject dependencies and run the pipeline.
		githubGateway, err := gateway.NewGitHubGateway(cfg.Token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		writer := storage.NewWriter(cfg.OutputDir, logger)
		pipeline := usecase.NewPipeline(githubGateway, writer, limit, logger)

		if err := pipeline.Run(ctx, lines); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Done! All data saved in %s/\n", cfg.OutputDir)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("input", "i", "", "Input file with one company name per line (default: companies.txt)")
	scanCmd.Flags().StringP("output", "o", "", "Output directory for JSON documents (default: json_data)")
	scanCmd.Flags().Int("limit", 0, "Maximum repositories to process per organization (0 = no limit)")
}
