// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orgscout",
	Short: "A CLI tool to resolve companies to GitHub orgs and collect repository metrics.",
	Long: `orgscout resolves informal company names to canonical GitHub organizations
using a scored-candidate heuristic, enumerates each resolved organization's
public repositories, and enriches them with activity metrics (pull request
counts, aggregated weekly code churn). Results are saved as one JSON document
per repository, grouped by company.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
