package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var recommendCount int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mapping statistics from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiGet("/api/v1/mapping/stats")
		if err != nil {
			return err
		}

		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		var stats struct {
			TotalRequests int64   `json:"total_requests"`
			DirectHits    int64   `json:"direct_hits"`
			EnhancedHits  int64   `json:"enhanced_hits"`
			Misses        int64   `json:"misses"`
			Errors        int64   `json:"errors"`
			SuccessRate   float64 `json:"success_rate"`
		}
		if err := json.Unmarshal(body, &stats); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		fmt.Println("Mapping statistics:")
		fmt.Printf("  Total requests: %d\n", stats.TotalRequests)
		fmt.Printf("  Direct hits:    %d\n", stats.DirectHits)
		fmt.Printf("  Enhanced hits:  %d\n", stats.EnhancedHits)
		fmt.Printf("  Misses:         %d\n", stats.Misses)
		fmt.Printf("  Errors:         %d\n", stats.Errors)
		fmt.Printf("  Success rate:   %.1f%%\n", stats.SuccessRate*100)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [imdb-id...]",
	Short: "Request profile recommendations from a running server",
	Long: `Send a liked-movies profile to a running server and print the
recommendations it returns. IMDb IDs may be given with or without the
tt prefix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := json.Marshal(map[string]interface{}{
			"liked_imdb_ids": args,
		})
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		url := fmt.Sprintf("%s/api/v1/recommendations/by_profile?n=%d", apiURL, recommendCount)
		resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to reach server: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		var result struct {
			Recommendations []struct {
				IMDbID string `json:"imdb_id"`
				Title  string `json:"title"`
				Year   string `json:"year"`
			} `json:"recommendations"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		fmt.Println(result.Message)
		for i, m := range result.Recommendations {
			fmt.Printf("  %2d. %s (%s) [%s]\n", i+1, m.Title, m.Year, m.IMDbID)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVar(&recommendCount, "n", 10, "Number of recommendations to request")
}

func apiGet(path string) ([]byte, error) {
	resp, err := http.Get(apiURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server at %s: %w", apiURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
