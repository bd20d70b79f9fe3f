package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiURL string = "http://localhost:8000"
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "recctl",
	Short: "Movie recommender CLI - Inspect and manage the recommendation service",
	Long: `recctl provides command-line access to the movie recommender.
Check model artifacts, rebuild the popular fallback list, and query
a running API server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Commands that touch the database read the same env vars as
		// the server, so pick up a local .env when present.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	// Add command groups
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recommendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
